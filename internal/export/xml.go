// =============================================================================
// Settlement Report Parser - XML Exporter
// =============================================================================
//
// XML STRUCTURE:
//
//   <settlementReport>
//     <organization>
//       <OrganizationNumber>999888777</OrganizationNumber>
//       <MerchantName>Payment Provider AS</MerchantName>
//     </organization>
//     <company>...</company>
//     <settlements count="2">              <!-- list shape -->
//       <settlement n="1">...</settlement>
//       <settlement n="2">...</settlement>
//     </settlements>
//     <fees count="1">
//       <fee n="1">...</fee>
//     </fees>
//     <transactions count="7">
//       <transaction n="1">...</transaction>
//     </transactions>
//   </settlementReport>
//
// Under the single shape the settlement appears directly below the root,
// without the list wrapper and index attribute. Element names inside a
// record are the column labels of the report format; amounts are written
// with at least two decimals.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/ginjaninja78/settlement-report-parser/internal/report"
)

func init() { Register(xmlExporter{}) }

const xmlRootElement = "settlementReport"

type xmlExporter struct{}

func (xmlExporter) Format() string    { return "xml" }
func (xmlExporter) Extension() string { return ".xml" }

func (xmlExporter) Export(w io.Writer, rep *report.Report, opts Options) error {
	doc, err := buildXML(rep, opts.SettlementShape)
	if err != nil {
		return err
	}
	doc.Indent(opts.indent())
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

func buildXML(rep *report.Report, shape Shape) (*etree.Document, error) {
	single, err := singleSettlement(rep, shape)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(xmlRootElement)

	addRecord(root, "organization", rep.Organization.Fields())
	addRecord(root, "company", rep.Company.Fields())

	if single {
		addRecord(root, "settlement", rep.Settlements[0].Fields())
	} else {
		list := addList(root, "settlements", len(rep.Settlements))
		for i, st := range rep.Settlements {
			addIndexed(list, "settlement", i, st.Fields())
		}
	}

	fees := addList(root, "fees", len(rep.Fees))
	for i, fee := range rep.Fees {
		addIndexed(fees, "fee", i, fee.Fields())
	}

	txs := addList(root, "transactions", len(rep.Transactions))
	for i, tx := range rep.Transactions {
		addIndexed(txs, "transaction", i, tx.Fields())
	}

	if len(rep.Warnings) > 0 {
		warnings := addList(root, "warnings", len(rep.Warnings))
		for i, w := range rep.Warnings {
			el := warnings.CreateElement("warning")
			el.CreateAttr("n", strconv.Itoa(i+1))
			el.CreateAttr("line", strconv.Itoa(w.Line))
			el.CreateAttr("section", w.Section)
			el.CreateAttr("field", w.Field)
			el.SetText(w.Value)
		}
	}
	return doc, nil
}

func addRecord(parent *etree.Element, tag string, fields []report.Field) *etree.Element {
	el := parent.CreateElement(tag)
	for _, f := range fields {
		el.CreateElement(f.Name).SetText(f.Value)
	}
	return el
}

func addList(parent *etree.Element, tag string, count int) *etree.Element {
	el := parent.CreateElement(tag)
	el.CreateAttr("count", strconv.Itoa(count))
	return el
}

// addIndexed appends a record carrying a 1-based "n" attribute.
func addIndexed(parent *etree.Element, tag string, i int, fields []report.Field) {
	addRecord(parent, tag, fields).CreateAttr("n", strconv.Itoa(i+1))
}
