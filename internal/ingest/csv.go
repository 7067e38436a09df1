package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"churnctl/pkg/contracts/domain"
)

// Columns is the required header set, in canonical export order.
var Columns = []string{
	"customer_id", "tenure_months", "contract_type", "service_type",
	"monthly_charges", "total_charges", "payment_method", "location_type",
	"num_services", "data_usage_gb", "support_calls", "autopay_enabled",
	"late_payment_count", "referral_count", "churned",
}

// ReadCSV reads raw records from a CSV file with one header row.
func ReadCSV(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := parseRows(csvRows(f))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	slog.Info("ingested raw records",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return records, nil
}

func csvRows(f io.Reader) func() ([]string, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.Read
}

// parseRows consumes rows from next until io.EOF. The first row is the
// header; its column order is honored regardless of the canonical order.
func parseRows(next func() ([]string, error)) ([]domain.RawRecord, error) {
	header, err := next()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for line := 2; ; line++ {
		row, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}
		records = append(records, recordFromRow(row, index))
	}
	return records, nil
}

// headerIndex maps canonical column names to their position, after
// trimming a UTF-8 BOM and folding case.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[key] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func recordFromRow(row []string, index map[string]int) domain.RawRecord {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return domain.RawRecord{
		CustomerID:       cell("customer_id"),
		TenureMonths:     parseNumeric(cell("tenure_months")),
		ContractType:     cell("contract_type"),
		ServiceType:      cell("service_type"),
		MonthlyCharges:   parseNumeric(cell("monthly_charges")),
		TotalCharges:     parseNumeric(cell("total_charges")),
		PaymentMethod:    cell("payment_method"),
		LocationType:     cell("location_type"),
		NumServices:      parseNumeric(cell("num_services")),
		DataUsageGB:      parseNumeric(cell("data_usage_gb")),
		SupportCalls:     parseNumeric(cell("support_calls")),
		AutopayEnabled:   cell("autopay_enabled"),
		LatePaymentCount: parseNumeric(cell("late_payment_count")),
		ReferralCount:    parseNumeric(cell("referral_count")),
		Churned:          parseNumeric(cell("churned")),
	}
}

// parseNumeric maps blank and unparseable cells to the missing marker.
func parseNumeric(s string) float64 {
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return domain.MissingValue()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return domain.MissingValue()
	}
	return v
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
