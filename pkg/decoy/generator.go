// Package decoy produces plausible replacement tracker data for the secure
// overwrite flow. Records come from a correlated daily-state model rather
// than independent random draws, so the output holds up to a casual look:
// short sleep shows up as low energy and low mood on the same day.
package decoy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/chaoscascade/daybook/pkg/records"
)

// dayState is the latent condition driving all of a day's signals.
type dayState int

const (
	stateRested dayState = iota
	stateTypical
	stateOvertaxed
)

func (s dayState) String() string {
	switch s {
	case stateRested:
		return "rested"
	case stateOvertaxed:
		return "overtaxed"
	default:
		return "typical"
	}
}

// transition rows must sum to 1.
var transitions = map[dayState][]struct {
	next dayState
	p    float64
}{
	stateRested:    {{stateRested, 0.60}, {stateTypical, 0.35}, {stateOvertaxed, 0.05}},
	stateTypical:   {{stateRested, 0.20}, {stateTypical, 0.60}, {stateOvertaxed, 0.20}},
	stateOvertaxed: {{stateRested, 0.10}, {stateTypical, 0.40}, {stateOvertaxed, 0.50}},
}

// randFloat draws a uniform float64 in [0, 1) from the OS entropy source.
// Decoy data must not be reproducible from a seed.
func randFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// gaussian is a Box-Muller draw.
func gaussian(mean, sd float64) float64 {
	u1 := randFloat()
	for u1 == 0 {
		u1 = randFloat()
	}
	return mean + sd*math.Sqrt(-2*math.Log(u1))*math.Cos(2*math.Pi*randFloat())
}

// randomInt draws uniformly from [min, max] inclusive.
func randomInt(min, max int) int {
	return min + int(randFloat()*float64(max-min+1))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pick(options []string) string {
	return options[randomInt(0, len(options)-1)]
}

// jitterTime renders a clock time near baseHour with ~15 minutes of Gaussian
// noise, so entries do not all sit on the hour.
func jitterTime(baseHour int) string {
	total := baseHour*60 + int(gaussian(0, 15))
	total = ((total % 1440) + 1440) % 1440
	return time.Date(2000, 1, 1, total/60, total%60, 0, 0, time.UTC).Format("3:04 PM")
}

// Generator evolves a latent daily state and emits correlated tracker
// records. One generator produces one internally-consistent history.
type Generator struct {
	state dayState
}

func NewGenerator() *Generator {
	return &Generator{state: stateTypical}
}

func (g *Generator) evolve() dayState {
	x := randFloat()
	acc := 0.0
	for _, t := range transitions[g.state] {
		acc += t.p
		if x <= acc {
			g.state = t.next
			return g.state
		}
	}
	g.state = stateTypical
	return g.state
}

// GenerateDays builds a replacement history covering daysBack days ending
// today. Roughly one day in twenty is skipped entirely; a history with no
// gaps at all reads as synthetic.
func (g *Generator) GenerateDays(daysBack int) []records.Record {
	var out []records.Record
	today := time.Now()

	for i := daysBack - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		if randFloat() < 0.05 {
			continue
		}
		out = append(out, g.Day(day.Format("2006-01-02"))...)
	}
	return out
}

// Day emits one day's records: sleep, energy and mood always, pain always
// (possibly empty), anxiety and headache occasionally.
func (g *Generator) Day(date string) []records.Record {
	state := g.evolve()

	sleepHours := map[dayState]float64{stateRested: 8, stateTypical: 7, stateOvertaxed: 5.5}[state]
	sleepHours += gaussian(0, 0.5)

	recs := []records.Record{
		g.sleepRecord(date, state, sleepHours),
		g.energyRecord(date, state, sleepHours),
		g.moodRecord(date, state, sleepHours),
		g.painRecord(date, state),
	}
	if randFloat() < 0.3 {
		recs = append(recs, g.anxietyRecord(date, state))
	}
	if randFloat() < 0.2 {
		recs = append(recs, g.headacheRecord(date, state))
	}
	return recs
}

func (g *Generator) sleepRecord(date string, state dayState, hours float64) records.Record {
	var quality int
	switch state {
	case stateRested:
		quality = randomInt(7, 9)
	case stateTypical:
		quality = randomInt(5, 7)
	default:
		quality = randomInt(2, 5)
	}

	notes := "restless night"
	if quality > 6 {
		notes = "restful sleep"
	} else if quality > 4 {
		notes = "okay sleep"
	}

	qualityTag := "poor"
	if quality > 6 {
		qualityTag = "good"
	}

	return newTrackerRecord(date, "sleep", map[string]any{
		"entries": []any{map[string]any{
			"id":      entryID("sleep", date),
			"time":    jitterTime(7),
			"hours":   math.Round(hours*10) / 10,
			"quality": quality,
			"notes":   notes,
		}},
	}, []string{"sleep", qualityTag})
}

func (g *Generator) energyRecord(date string, state dayState, sleepHours float64) records.Record {
	base := map[dayState]float64{stateRested: 0.8, stateTypical: 0.6, stateOvertaxed: 0.4}[state]
	level := clamp(int(math.Round(10*(0.4*base+0.6*(sleepHours/8))+gaussian(0, 0.3))), 1, 10)

	activities := []string{"rest", "light work", "reading", "tv"}
	factors := []string{"poor sleep", "stress", "weather"}
	notes := "taking it easy"
	levelTag := "low"
	if level > 6 {
		activities = []string{"exercise", "work", "socializing", "projects"}
		factors = []string{"good sleep", "nutrition", "exercise"}
		notes = "feeling good today"
		levelTag = "good"
	}

	return newTrackerRecord(date, "energy", map[string]any{
		"entries": []any{map[string]any{
			"id":         entryID("energy", date),
			"time":       jitterTime(12),
			"level":      level,
			"factors":    []any{pick(factors)},
			"activities": []any{pick(activities)},
			"notes":      notes,
		}},
	}, []string{"energy", levelTag})
}

func (g *Generator) moodRecord(date string, state dayState, sleepHours float64) records.Record {
	base := map[dayState]int{stateRested: 7, stateTypical: 5, stateOvertaxed: 3}[state]
	bonus := 0
	if sleepHours > 7 {
		bonus = 1
	} else if sleepHours < 6 {
		bonus = -1
	}
	mood := clamp(base+bonus+randomInt(-1, 1), 1, 10)

	var moods []string
	switch {
	case mood > 6:
		moods = []string{"content", "happy", "energetic"}
	case mood > 4:
		moods = []string{"okay", "neutral", "tired"}
	default:
		moods = []string{"low", "stressed", "overwhelmed"}
	}

	stress := randomInt(2, 5)
	if state == stateOvertaxed {
		stress = randomInt(6, 9)
	}

	notes := "taking it one day at a time"
	moodTag := "challenging"
	if mood > 6 {
		notes = "feeling good today"
		moodTag = "good"
	}

	return newTrackerRecord(date, "mental-health", map[string]any{
		"entries": []any{map[string]any{
			"id":      entryID("mood", date),
			"time":    jitterTime(18),
			"mood":    pick(moods),
			"anxiety": clamp(11-mood+randomInt(-1, 1), 1, 10),
			"stress":  stress,
			"notes":   notes,
		}},
	}, []string{"mental-health", moodTag})
}

func (g *Generator) painRecord(date string, state dayState) records.Record {
	level := randomInt(0, 3)
	if state == stateOvertaxed {
		level = randomInt(4, 7)
	}

	if level == 0 {
		return newTrackerRecord(date, "general-pain",
			map[string]any{"entries": []any{}},
			[]string{"pain", "none"})
	}

	treatments := []string{"rest", "stretch", "break"}
	notes := "mild discomfort"
	severityTag := "mild"
	if level > 5 {
		treatments = []string{"medication", "rest", "heat"}
		notes = "significant discomfort"
		severityTag = "severe"
	}

	return newTrackerRecord(date, "general-pain", map[string]any{
		"entries": []any{map[string]any{
			"id":         entryID("pain", date),
			"time":       jitterTime(14),
			"severity":   level,
			"location":   pick([]string{"back", "neck", "shoulders"}),
			"treatments": []any{pick(treatments)},
			"notes":      notes,
		}},
	}, []string{"pain", severityTag})
}

func (g *Generator) anxietyRecord(date string, state dayState) records.Record {
	level := randomInt(2, 5)
	triggers := []any{"none"}
	if state == stateOvertaxed {
		level = randomInt(6, 9)
		triggers = []any{"work", "stress"}
	}

	coping := []string{"exercise", "music", "rest"}
	notes := "managing well"
	levelTag := "manageable"
	if level > 6 {
		coping = []string{"medication", "therapy", "breathing"}
		notes = "challenging day"
		levelTag = "high"
	}

	return newTrackerRecord(date, "anxiety", map[string]any{
		"entries": []any{map[string]any{
			"id":                entryID("anxiety", date),
			"time":              jitterTime(16),
			"anxiety_level":     level,
			"triggers":          triggers,
			"coping_strategies": []any{pick(coping)},
			"notes":             notes,
		}},
	}, []string{"anxiety", levelTag})
}

func (g *Generator) headacheRecord(date string, state dayState) records.Record {
	severity := randomInt(2, 4)
	triggers := []any{"screen time"}
	if state == stateOvertaxed {
		severity = randomInt(5, 8)
		triggers = []any{"stress", "fatigue"}
	}

	kind := "tension"
	treatments := []string{"rest", "water", "break"}
	notes := "mild headache"
	severityTag := "mild"
	if severity > 5 {
		kind = "migraine"
		treatments = []string{"medication", "dark room", "rest"}
		notes = "significant headache"
		severityTag = "severe"
	}

	return newTrackerRecord(date, "head-pain", map[string]any{
		"entries": []any{map[string]any{
			"id":         entryID("headache", date),
			"time":       jitterTime(13),
			"severity":   severity,
			"type":       kind,
			"triggers":   triggers,
			"treatments": []any{pick(treatments)},
			"notes":      notes,
		}},
	}, []string{"headache", severityTag})
}

func entryID(kind, date string) string {
	return fmt.Sprintf("%s-%s-%d", kind, date, randomInt(1000, 9999))
}

// newTrackerRecord stamps plausible metadata: created_at lands inside the
// record's own day, not at generation time. Version is left unset; the
// overwrite insert path assigns version 1 to every replacement regardless.
func newTrackerRecord(date, subcategory string, content map[string]any, tags []string) records.Record {
	createdAt := dayTimestamp(date)
	return records.Record{
		Date:        date,
		Category:    records.CategoryTracker,
		Subcategory: subcategory,
		Content:     content,
		Tags:        tags,
		Metadata: records.Metadata{
			CreatedAt: createdAt,
			UpdatedAt: createdAt + float64(randomInt(60, 600)),
			UserID:    records.DefaultUserID,
		},
	}
}

// dayTimestamp returns a unix timestamp during waking hours of the given
// date. Unparseable dates fall back to now.
func dayTimestamp(date string) float64 {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return float64(time.Now().Unix())
	}
	at := day.Add(time.Duration(7+randomInt(0, 14)) * time.Hour).Add(time.Duration(randomInt(0, 59)) * time.Minute)
	return float64(at.Unix())
}
