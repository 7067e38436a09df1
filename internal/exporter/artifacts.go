package exporter

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v2"

	"churnctl/internal/features"
	"churnctl/internal/ingest"
	"churnctl/pkg/contracts/domain"
)

// WriteCleanDataset writes the cleaned record set with the input column
// set, every value schema-valid.
func (w *CSVWriter) WriteCleanDataset(name string, records []domain.CleanRecord) error {
	rows := make([][]string, 0, len(records))
	for _, c := range records {
		r := c.Raw()
		rows = append(rows, []string{
			r.CustomerID,
			formatNum(r.TenureMonths),
			r.ContractType,
			r.ServiceType,
			formatNum(r.MonthlyCharges),
			formatNum(r.TotalCharges),
			r.PaymentMethod,
			r.LocationType,
			formatNum(r.NumServices),
			formatNum(r.DataUsageGB),
			formatNum(r.SupportCalls),
			r.AutopayEnabled,
			formatNum(r.LatePaymentCount),
			formatNum(r.ReferralCount),
			strconv.Itoa(c.Churned),
		})
	}
	return w.WriteCSV(name, WriteOptions{
		Headers:   ingest.Columns,
		Records:   rows,
		BOMPrefix: true,
	})
}

// WriteRawDataset writes unprocessed records as they arrived, missing
// numerics rendered as empty cells. Used to persist synthetic batches.
func (w *CSVWriter) WriteRawDataset(name string, records []domain.RawRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CustomerID,
			formatRawNum(r.TenureMonths),
			r.ContractType,
			r.ServiceType,
			formatRawNum(r.MonthlyCharges),
			formatRawNum(r.TotalCharges),
			r.PaymentMethod,
			r.LocationType,
			formatRawNum(r.NumServices),
			formatRawNum(r.DataUsageGB),
			formatRawNum(r.SupportCalls),
			r.AutopayEnabled,
			formatRawNum(r.LatePaymentCount),
			formatRawNum(r.ReferralCount),
			formatRawNum(r.Churned),
		})
	}
	return w.WriteCSV(name, WriteOptions{
		Headers:   ingest.Columns,
		Records:   rows,
		BOMPrefix: true,
	})
}

// WriteAssessments writes one row per scored customer: identifier,
// probability, tier and the top drivers with their sign.
func (w *CSVWriter) WriteAssessments(name string, assessments []domain.RiskAssessment) error {
	headers := []string{"customer_id", "churn_probability", "risk_tier", "top_drivers"}
	rows := make([][]string, 0, len(assessments))
	for _, a := range assessments {
		rows = append(rows, []string{
			a.CustomerID,
			strconv.FormatFloat(a.Probability, 'f', 4, 64),
			string(a.Tier),
			formatDrivers(a.TopDrivers),
		})
	}
	return w.WriteCSV(name, WriteOptions{Headers: headers, Records: rows, BOMPrefix: true})
}

// WriteCoefficients writes the fitted per-feature weights, largest
// absolute weight first, the shape analysts read model behavior from.
func (w *CSVWriter) WriteCoefficients(name string, coefficients map[string]float64) error {
	type pair struct {
		name string
		coef float64
		abs  float64
	}
	pairs := make([]pair, 0, len(coefficients))
	for feat, c := range coefficients {
		abs := c
		if abs < 0 {
			abs = -abs
		}
		pairs = append(pairs, pair{feat, c, abs})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].abs != pairs[j].abs {
			return pairs[i].abs > pairs[j].abs
		}
		return pairs[i].name < pairs[j].name
	})

	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.name, strconv.FormatFloat(p.coef, 'f', 6, 64)})
	}
	return w.WriteCSV(name, WriteOptions{Headers: []string{"feature", "coefficient"}, Records: rows})
}

// WriteRepairReport writes the report as indented JSON.
func (w *CSVWriter) WriteRepairReport(name string, report *domain.RepairReport) error {
	return w.writeFile(name, func() ([]byte, error) {
		return json.MarshalIndent(report, "", "  ")
	})
}

// WriteFittedStats writes the named-statistic artifact as YAML; loading
// it back reproduces evaluation-time feature derivation exactly.
func (w *CSVWriter) WriteFittedStats(name string, stats *features.FittedStatistics) error {
	return w.writeFile(name, func() ([]byte, error) {
		return yaml.Marshal(stats.Artifact())
	})
}

// WriteJSON writes an arbitrary artifact as indented JSON. The run
// summary goes through here.
func (w *CSVWriter) WriteJSON(name string, v any) error {
	return w.writeFile(name, func() ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	})
}

func (w *CSVWriter) writeFile(name string, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	fullPath := filepath.Join(w.outDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fullPath, err)
	}
	w.logger.Info("wrote artifact", "path", fullPath, "bytes", len(data))
	return nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRawNum(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDrivers(drivers []domain.Attribution) string {
	out := ""
	for i, d := range drivers {
		if i > 0 {
			out += "; "
		}
		sign := "-"
		if d.RaisesRisk {
			sign = "+"
		}
		out += fmt.Sprintf("%s(%s%.3f)", d.Feature, sign, d.Magnitude)
	}
	return out
}
