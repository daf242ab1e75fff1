package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	telemetry "voc-dashboard/internal/telemetry/domain"
)

// BuildSeriesPDF renders a tabular PDF report of a series snapshot.
func BuildSeriesPDF(snapshot telemetry.Snapshot, deviceName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Air Quality Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if deviceName != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Device: %s", deviceName))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Samples: %d", snapshot.Len()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(55, 6, "Time", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "VOC Index", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Temperature (C)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Humidity (%)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for i := 0; i < snapshot.Len(); i++ {
		pdf.CellFormat(55, 6, snapshot.Timestamps[i], "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.1f", snapshot.VOC[i]), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.1f", snapshot.Temperatures[i]), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f", snapshot.Humidities[i]), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSeriesXLSX renders an XLSX workbook of a series snapshot.
func BuildSeriesXLSX(snapshot telemetry.Snapshot, deviceName string) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "readings"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Device")
	_ = f.SetCellValue(sheet, "B1", deviceName)
	_ = f.SetCellValue(sheet, "A2", "Generated")
	_ = f.SetCellValue(sheet, "B2", time.Now().UTC().Format(time.RFC3339))

	_ = f.SetCellValue(sheet, "A4", "Time")
	_ = f.SetCellValue(sheet, "B4", "VOC Index")
	_ = f.SetCellValue(sheet, "C4", "Temperature (C)")
	_ = f.SetCellValue(sheet, "D4", "Humidity (%)")
	for i := 0; i < snapshot.Len(); i++ {
		row := 5 + i
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), snapshot.Timestamps[i])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), snapshot.VOC[i])
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), snapshot.Temperatures[i])
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), snapshot.Humidities[i])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
