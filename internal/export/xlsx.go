package export

import (
	"fmt"
	"io"
	"time"

	"huddle/internal/models"
	"huddle/internal/schedule"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Agenda"

// WriteAgenda renders a room's agenda for a date range as an .xlsx
// spreadsheet: one header row per day, then that day's bookings ordered by
// start time.
func WriteAgenda(w io.Writer, room *models.Room, bookings []models.Booking, startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return fmt.Errorf("export range inverted: %s after %s",
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s: %s to %s",
		room.Name, startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))
	_ = f.MergeCell(sheetName, "A1", "D1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	dayStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, day.Format("Monday, 02.01.2006"))
		_ = f.SetCellStyle(sheetName, cell, cell, dayStyle)
		row++

		agenda := schedule.ForDay(bookings, day)
		if len(agenda) == 0 {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			_ = f.SetCellValue(sheetName, cell, "free all day")
			row++
			continue
		}

		for _, b := range agenda {
			row = writeBookingRow(f, row, b)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 18)
	_ = f.SetColWidth(sheetName, "B", "C", 30)
	_ = f.SetColWidth(sheetName, "D", "D", 25)
	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeBookingRow(f *excelize.File, row int, b models.Booking) int {
	timeCell, _ := excelize.CoordinatesToCellName(1, row)
	titleCell, _ := excelize.CoordinatesToCellName(2, row)
	byCell, _ := excelize.CoordinatesToCellName(3, row)

	_ = f.SetCellValue(sheetName, timeCell, fmt.Sprintf("%s - %s",
		b.StartTime.Format("15:04"), b.EndTime.Format("15:04")))
	_ = f.SetCellValue(sheetName, titleCell, b.Title)
	_ = f.SetCellValue(sheetName, byCell, b.UserName)

	return row + 1
}
