package api

import (
	"fmt"
	"time"
)

const timeLayout = time.RFC3339

var (
	indonesianDays = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

	indonesianMonths = [12]string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
)

// formatIndonesianDate renders t as "Senin, 19 Oktober 2026".
func formatIndonesianDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", indonesianDays[t.Weekday()], t.Day(), indonesianMonths[t.Month()-1], t.Year())
}
