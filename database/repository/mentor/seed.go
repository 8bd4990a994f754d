package mentorRepo

import (
	"fmt"
	"strconv"
	"strings"

	"mentorlink/models"
)

// ParseSeed reads "id:rate[:currency]" entries separated by commas.
func ParseSeed(raw string) ([]models.Mentor, error) {
	var out []models.Mentor
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid mentor seed %q", item)
		}
		rate, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("invalid hourly rate in mentor seed %q", item)
		}
		m := models.Mentor{ID: parts[0], HourlyRate: rate}
		if len(parts) == 3 {
			m.Currency = strings.ToUpper(parts[2])
		}
		out = append(out, m)
	}
	return out, nil
}
