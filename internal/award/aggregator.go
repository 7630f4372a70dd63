// Package award merges per-program award-availability rows into a
// comparative per-date, per-program view and computes the cheapest
// available program per cabin.
package award

import (
	"sort"
	"strings"

	"github.com/dkramer/flightdeck/internal/cabinmap"
	"github.com/dkramer/flightdeck/internal/models"
)

// Normalize resolves provider cabin tokens on raw award rows. A row
// carrying any token missing from the provider's mapping table is dropped
// whole and reported; the rest of the batch continues.
func Normalize(raws []models.RawAward) ([]models.AwardAvailability, []error) {
	rows := make([]models.AwardAvailability, 0, len(raws))
	var errs []error

	for _, raw := range raws {
		cabins := make(map[models.Cabin]models.CabinAward, len(raw.Cabins))
		var mapErr error
		for token, entry := range raw.Cabins {
			cabin, err := cabinmap.Map(raw.Provider, token)
			if err != nil {
				mapErr = err
				break
			}
			award := models.CabinAward{
				Available: entry.Available,
				Direct:    entry.Direct,
				Airlines:  entry.Airlines,
			}
			// Cost is meaningful only on available entries.
			if entry.Available {
				award.MileageCost = entry.MileageCost
			}
			cabins[cabin] = award
		}
		if mapErr != nil {
			errs = append(errs, mapErr)
			continue
		}

		rows = append(rows, models.AwardAvailability{
			ID:          raw.ID,
			Origin:      strings.ToUpper(raw.Origin),
			Destination: strings.ToUpper(raw.Destination),
			Date:        raw.Date,
			Program:     strings.ToLower(raw.Program),
			Cabins:      cabins,
		})
	}

	return rows, errs
}

// Options controls aggregation.
type Options struct {
	// Programs restricts aggregation to these mileage programs. The
	// restriction is applied before merging so excluded programs cannot
	// contaminate the cheapest computation. Empty means all programs seen.
	Programs []string

	// Cheapest orders each date's program rows by their lowest available
	// mileage cost instead of by program name.
	Cheapest bool
}

// Aggregate merges normalized award rows for a route across the requested
// dates. Every requested (date, program) pair yields exactly one merged
// row with an entry for each of the four cabins, synthesized as
// unavailable when the source omitted the cabin. A program reporting
// several rows for one date (different operating flights) keeps all of
// them under Flights; the merged cabin entries and the cheapest
// computation take the minimum cost across those rows.
func Aggregate(rows []models.AwardAvailability, origin, destination string, dates []string, opts Options) models.AggregatedView {
	programs := requestedPrograms(rows, opts.Programs)

	// Pre-filter: programs outside the caller's set never reach the merge.
	if len(opts.Programs) > 0 {
		allowed := make(map[string]bool, len(opts.Programs))
		for _, p := range opts.Programs {
			allowed[strings.ToLower(p)] = true
		}
		kept := rows[:0:0]
		for _, row := range rows {
			if allowed[row.Program] {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	byDateProgram := make(map[string]map[string][]models.AwardAvailability)
	for _, row := range rows {
		if byDateProgram[row.Date] == nil {
			byDateProgram[row.Date] = make(map[string][]models.AwardAvailability)
		}
		byDateProgram[row.Date][row.Program] = append(byDateProgram[row.Date][row.Program], row)
	}

	view := models.AggregatedView{
		Origin:      strings.ToUpper(origin),
		Destination: strings.ToUpper(destination),
		Dates:       make([]models.DateAwards, 0, len(dates)),
	}

	for _, date := range dates {
		day := models.DateAwards{
			Date:             date,
			Programs:         make([]models.ProgramDayAwards, 0, len(programs)),
			CheapestPerCabin: make(map[models.Cabin]models.CheapestAward),
		}

		for _, program := range programs {
			merged := mergeProgramDay(program, date, byDateProgram[date][program])
			day.Programs = append(day.Programs, merged)

			for cabin, entry := range merged.Cabins {
				if !entry.Available {
					continue
				}
				current, ok := day.CheapestPerCabin[cabin]
				if !ok || entry.MileageCost < current.MileageCost {
					day.CheapestPerCabin[cabin] = models.CheapestAward{
						Program:     program,
						MileageCost: entry.MileageCost,
					}
				}
			}
		}

		sortPrograms(day.Programs, opts.Cheapest)
		view.Dates = append(view.Dates, day)
	}

	return view
}

// mergeProgramDay collapses a program's rows for one date into a single
// row per cabin, keeping the cheapest available entry per cabin and
// synthesizing unavailable entries for cabins no row reported.
func mergeProgramDay(program, date string, rows []models.AwardAvailability) models.ProgramDayAwards {
	merged := models.ProgramDayAwards{
		Program: program,
		Date:    date,
		Cabins:  make(map[models.Cabin]models.CabinAward, len(models.AllCabins)),
	}
	if len(rows) > 1 {
		merged.Flights = rows
	}

	for _, cabin := range models.AllCabins {
		best := models.CabinAward{Available: false}
		for _, row := range rows {
			entry, ok := row.Cabins[cabin]
			if !ok || !entry.Available {
				continue
			}
			if !best.Available || entry.MileageCost < best.MileageCost {
				best = entry
			}
		}
		merged.Cabins[cabin] = best
	}

	return merged
}

// requestedPrograms returns the programs every date must report on:
// the caller's filter set when given, otherwise all programs present in
// the rows, sorted for deterministic output.
func requestedPrograms(rows []models.AwardAvailability, filter []string) []string {
	if len(filter) > 0 {
		programs := make([]string, len(filter))
		for i, p := range filter {
			programs[i] = strings.ToLower(p)
		}
		sort.Strings(programs)
		return programs
	}

	seen := make(map[string]bool)
	var programs []string
	for _, row := range rows {
		if !seen[row.Program] {
			seen[row.Program] = true
			programs = append(programs, row.Program)
		}
	}
	sort.Strings(programs)
	return programs
}

// sortPrograms orders a date's rows by program name, or by lowest
// available mileage cost when the cheapest flag is set. Programs with no
// availability sort last.
func sortPrograms(programs []models.ProgramDayAwards, cheapest bool) {
	if !cheapest {
		sort.SliceStable(programs, func(i, j int) bool {
			return programs[i].Program < programs[j].Program
		})
		return
	}
	sort.SliceStable(programs, func(i, j int) bool {
		ci, oki := lowestCost(programs[i])
		cj, okj := lowestCost(programs[j])
		if oki != okj {
			return oki
		}
		if ci != cj {
			return ci < cj
		}
		return programs[i].Program < programs[j].Program
	})
}

func lowestCost(p models.ProgramDayAwards) (int, bool) {
	lowest, found := 0, false
	for _, entry := range p.Cabins {
		if !entry.Available {
			continue
		}
		if !found || entry.MileageCost < lowest {
			lowest, found = entry.MileageCost, true
		}
	}
	return lowest, found
}
