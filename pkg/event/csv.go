package event

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const csvDateLayout = "02/01/2006 15:04"

var csvHeader = []string{"ID", "Title", "Description", "Variant", "Start", "End", "Duration"}

// RenderCSV writes one row per event, in the order given, after a header row.
func RenderCSV(events []Event) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.Write(csvHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	for _, e := range events {
		row := []string{
			e.ID,
			e.Title,
			e.Description,
			string(e.Variant),
			e.StartDate.Format(csvDateLayout),
			e.EndDate.Format(csvDateLayout),
			durationToString(e.EndDate.Sub(e.StartDate)),
		}
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func durationToString(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	return pad(int(duration.Hours())) + ":" + pad(int(duration.Minutes())%60) + ":" + pad(int(duration.Seconds())%60)
}

func pad(v int) string {
	s := strconv.Itoa(v)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
