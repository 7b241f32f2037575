package partners

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"hvacquote/internal"
	"hvacquote/internal/config"
	"hvacquote/internal/storage"
	"hvacquote/internal/util"
)

// RosterService imports the partner roster and backfills coordinates
// for rows that were never geocoded.
type RosterService struct {
	db     *storage.DB
	client *Client
	delay  time.Duration
}

func NewRosterService(db *storage.DB, cfg config.Config) *RosterService {
	return &RosterService{
		db:     db,
		client: NewClient(cfg),
		delay:  time.Duration(cfg.GeocodeBackfillMs) * time.Millisecond,
	}
}

// ReadRosterCSV loads partners from a CSV with partner_name,
// address_line1, city, state, postal_code and optional latitude/
// longitude columns.
func ReadRosterCSV(path string) ([]internal.Partner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("roster %s has no data rows", path)
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameIdx, ok := col["partner_name"]
	if !ok {
		return nil, fmt.Errorf("roster %s: missing partner_name column", path)
	}

	pick := func(row []string, key string) string {
		if i, ok := col[key]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	out := make([]internal.Partner, 0, len(records)-1)
	for _, row := range records[1:] {
		if nameIdx >= len(row) || strings.TrimSpace(row[nameIdx]) == "" {
			continue
		}
		p := internal.Partner{
			Name:         strings.TrimSpace(row[nameIdx]),
			AddressLine1: pick(row, "address_line1"),
			City:         pick(row, "city"),
			State:        pick(row, "state"),
			PostalCode:   pick(row, "postal_code"),
		}
		if lat, err := strconv.ParseFloat(pick(row, "latitude"), 64); err == nil {
			if lng, err := strconv.ParseFloat(pick(row, "longitude"), 64); err == nil {
				p.Latitude = util.FloatPtr(lat)
				p.Longitude = util.FloatPtr(lng)
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Import loads a roster CSV into the database.
func (s *RosterService) Import(path string) (int, error) {
	roster, err := ReadRosterCSV(path)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertPartners(roster); err != nil {
		return 0, err
	}
	return len(roster), nil
}

// GeocodeMissing resolves coordinates for partners that have none,
// pacing requests with a small delay on top of the client limiter.
// Individual failures are logged and skipped so one bad address does
// not block the rest of the roster.
func (s *RosterService) GeocodeMissing(ctx context.Context) (updated, failed int, err error) {
	missing, err := s.db.ListPartnersMissingCoords()
	if err != nil {
		return 0, 0, err
	}

	log := zap.L().With(zap.String("component", "partners.roster"))
	for _, p := range missing {
		address := util.JoinNonEmpty(", ", p.AddressLine1, p.City, p.State, p.PostalCode)
		coord, gerr := s.client.Geocode(ctx, address)
		if gerr != nil {
			log.Warn("geocode failed", zap.String("partner", p.Name), zap.Error(gerr))
			failed++
			continue
		}
		if uerr := s.db.UpdatePartnerCoords(p.ID, coord.Lat, coord.Lng); uerr != nil {
			return updated, failed, uerr
		}
		updated++

		select {
		case <-ctx.Done():
			return updated, failed, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return updated, failed, nil
}
