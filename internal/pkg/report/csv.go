package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"creator_id",
	"account_holder",
	"bank_name",
	"account_number",
	"business_type",
	"business_reg_number",
	"settlements",
	"gross_amount",
	"fee",
	"net_amount",
}

// spreadsheetSafe prefixes cells that a spreadsheet would evaluate as a
// formula with a single quote.
func spreadsheetSafe(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// WriteCSV writes the report as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, m *Monthly) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range m.Rows {
		record := []string{
			spreadsheetSafe(r.CreatorID),
			spreadsheetSafe(r.AccountHolder),
			spreadsheetSafe(r.BankName),
			spreadsheetSafe(r.AccountNumber),
			spreadsheetSafe(r.BusinessType),
			spreadsheetSafe(r.BusinessRegNumber),
			strconv.Itoa(r.Settlements),
			strconv.FormatInt(r.GrossAmount, 10),
			strconv.FormatInt(r.Fee, 10),
			strconv.FormatInt(r.NetAmount, 10),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders the report into memory.
func CSV(m *Monthly) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
