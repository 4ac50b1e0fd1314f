// filetoexcel converts a collected .bin or .csv file into an Excel
// workbook with per-sample ones counts, the cumulative mean and a
// running z-score against the fair-coin expectation, plus a line chart
// of the z-score. Sample size and interval are recovered from the file
// name convention built by package naming.
package main

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName       = "Zscore"
	onesColumnName  = "ones"
	blockColumnName = "samples"
	timeColumnName  = "time"
)

// sampleRow is one input sample with its label and ones count, plus the
// computed cumulative mean and z-score.
type sampleRow struct {
	Label          string
	Ones           int
	CumulativeMean float64
	ZScore         float64
}

var (
	intervalRe = regexp.MustCompile(`_i(\d+)`)
	bitsRe     = regexp.MustCompile(`_s(\d+)_i`)
)

// parseNameParam extracts a numeric parameter from the file name using
// the given pattern.
func parseNameParam(filePath string, re *regexp.Regexp, what string) (int, error) {
	m := re.FindStringSubmatch(filepath.Base(filePath))
	if len(m) < 2 {
		return 0, fmt.Errorf("%s not found in file name: %s", what, filepath.Base(filePath))
	}
	return strconv.Atoi(m[1])
}

// readBinFile slices a raw capture into blocks of blockBits bits and
// counts the ones per block. A partial trailing block is kept.
func readBinFile(filePath string, blockBits int) ([]sampleRow, error) {
	if blockBits%8 != 0 {
		return nil, errors.New("block size must be a multiple of 8 bits for .bin files")
	}
	bytesPerBlock := blockBits / 8
	if bytesPerBlock <= 0 {
		return nil, errors.New("invalid block size")
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	rows := make([]sampleRow, 0, 1024)
	buf := make([]byte, bytesPerBlock)
	block := 1
	for {
		n, err := io.ReadFull(reader, buf)
		if n == 0 {
			break
		}
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, err
		}
		count := 0
		for i := 0; i < n; i++ {
			count += bits.OnesCount8(buf[i])
		}
		rows = append(rows, sampleRow{Label: strconv.Itoa(block), Ones: count})
		block++
		if n < bytesPerBlock {
			break
		}
	}
	return rows, nil
}

// readCSVFile reads the two-column (timestamp, ones) capture log.
func readCSVFile(filePath string) ([]sampleRow, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([]sampleRow, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		label := formatTimeLabel(strings.TrimSpace(rec[0]))
		onesStr := strings.TrimSpace(rec[1])
		ones, err := strconv.Atoi(onesStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ones value '%s': %w", onesStr, err)
		}
		rows = append(rows, sampleRow{Label: label, Ones: ones})
	}
	return rows, nil
}

// formatTimeLabel reduces a capture timestamp to HH:MM:SS. Unparseable
// labels pass through unchanged.
func formatTimeLabel(s string) string {
	formats := []string{
		"20060102T15:04:05", // written by cmd/collect
		time.RFC3339,
		"2006-01-02 15:04:05",
		"15:04:05",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05")
		}
	}
	return s
}

// calculateZTest computes the cumulative mean of ones and a z-score per
// row. For fair bits the expected ones per block is blockBits/2 with
// standard deviation sqrt(blockBits/4).
func calculateZTest(rows []sampleRow, blockBits int) []sampleRow {
	expectedMean := 0.5 * float64(blockBits)
	expectedStdDev := math.Sqrt(float64(blockBits) * 0.25)
	if expectedStdDev == 0 {
		return rows
	}
	sum := 0
	for i := range rows {
		sum += rows[i].Ones
		cumMean := float64(sum) / float64(i+1)
		z := (cumMean - expectedMean) / (expectedStdDev / math.Sqrt(float64(i+1)))
		rows[i].CumulativeMean = cumMean
		rows[i].ZScore = z
	}
	return rows
}

// writeToExcel writes the rows and a z-score line chart next to the
// input file with a .xlsx extension.
func writeToExcel(rows []sampleRow, filePath string, blockBits int, intervalSec int, firstColumnHeader string) error {
	if len(rows) == 0 {
		return errors.New("no data to write")
	}
	fileToSave := strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".xlsx"
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheetName {
		f.NewSheet(sheetName)
		f.DeleteSheet(defaultSheet)
	}

	_ = f.SetCellStr(sheetName, "A1", firstColumnHeader)
	_ = f.SetCellStr(sheetName, "B1", onesColumnName)
	_ = f.SetCellStr(sheetName, "C1", "cumulative_mean")
	_ = f.SetCellStr(sheetName, "D1", "z_test")

	for i, r := range rows {
		rowIdx := i + 2
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowIdx), r.Label)
		_ = f.SetCellInt(sheetName, fmt.Sprintf("B%d", rowIdx), r.Ones)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("C%d", rowIdx), r.CumulativeMean, 6, 64)
		_ = f.SetCellFloat(sheetName, fmt.Sprintf("D%d", rowIdx), r.ZScore, 6, 64)
	}

	endRow := len(rows) + 1
	chart := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$D$1", sheetName),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetName, endRow),
				Values:     fmt.Sprintf("%s!$D$2:$D$%d", sheetName, endRow),
			},
		},
		Title:  []excelize.RichTextRun{{Text: filepath.Base(filePath)}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Number of Samples - one sample every %d second(s)", intervalSec)}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Z-score - Sample Size = %d bits", blockBits)}}, MajorGridLines: true},
	}
	if err := f.AddChart(sheetName, "F2", chart); err != nil {
		return err
	}

	return f.SaveAs(fileToSave)
}

func run(filePath string) error {
	interval, err := parseNameParam(filePath, intervalRe, "interval")
	if err != nil {
		return err
	}
	blockBits, err := parseNameParam(filePath, bitsRe, "bit count")
	if err != nil {
		return err
	}

	var rows []sampleRow
	firstHeader := blockColumnName
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".bin":
		rows, err = readBinFile(filePath, blockBits)
	case ".csv":
		rows, err = readCSVFile(filePath)
		firstHeader = timeColumnName
	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(filePath))
	}
	if err != nil {
		return err
	}

	rows = calculateZTest(rows, blockBits)
	return writeToExcel(rows, filePath, blockBits, interval, firstHeader)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: filetoexcel <path-to-.bin-or-.csv>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
