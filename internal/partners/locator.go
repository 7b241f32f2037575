package partners

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"hvacquote/internal"
	"hvacquote/internal/storage"
	"hvacquote/internal/util"
)

const topPartners = 3

// Locator ranks the geocoded roster by driving distance from a
// customer address.
type Locator struct {
	db     *storage.DB
	client *Client
}

func NewLocator(db *storage.DB, client *Client) *Locator {
	return &Locator{db: db, client: client}
}

// FindClosest geocodes the customer address, fetches driving distances
// to every geocoded partner, and returns the nearest three ascending.
// Partners whose distance lookup failed sort last and are dropped from
// the result rather than reported as infinitely far.
func (l *Locator) FindClosest(ctx context.Context, address string) ([]internal.PartnerMatch, error) {
	origin, err := l.client.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("could not find coordinates for the customer address: %w", err)
	}

	roster, err := l.db.ListPartners()
	if err != nil {
		return nil, err
	}

	type candidate struct {
		partner internal.Partner
		coord   Coord
		miles   float64
	}
	candidates := make([]candidate, 0, len(roster))
	for _, p := range roster {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		candidates = append(candidates, candidate{
			partner: p,
			coord:   Coord{Lat: *p.Latitude, Lng: *p.Longitude},
		})
	}
	if len(candidates) == 0 {
		return nil, errors.New("no geocoded partners in roster; run partners:geocode first")
	}

	dests := make([]Coord, 0, len(candidates))
	for _, c := range candidates {
		dests = append(dests, c.coord)
	}
	distances := l.client.DrivingDistances(ctx, origin, dests)
	for i := range candidates {
		candidates[i].miles = distances[i]
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].miles < candidates[j].miles })
	if len(candidates) > topPartners {
		candidates = candidates[:topPartners]
	}

	matches := make([]internal.PartnerMatch, 0, len(candidates))
	for _, c := range candidates {
		if math.IsInf(c.miles, 1) {
			continue
		}
		matches = append(matches, internal.PartnerMatch{
			Name: c.partner.Name,
			Address: util.JoinNonEmpty(", ",
				c.partner.AddressLine1,
				c.partner.City,
				util.JoinNonEmpty(" ", c.partner.State, c.partner.PostalCode)),
			DistanceMiles: math.Round(c.miles*100) / 100,
		})
	}
	if len(matches) == 0 {
		return nil, errors.New("driving distance lookup failed for every partner")
	}
	return matches, nil
}
