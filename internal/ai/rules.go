package ai

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const slotTimeLayout = "2006-01-02 15:04"

// RuleExtractor is the deterministic extractor. It implements the same
// policy the model prompt enforces with pattern matching alone, so the
// extraction endpoint keeps working when the model is down. Everything it
// emits is a substring of the transcript (minus one leading article) or a
// sentinel; anything it cannot isolate stays nil.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor { return &RuleExtractor{} }

const luggageWords = `(?:luggage|baggage|bags?|suitcases?|holdalls?|backpacks?|rucksacks?|carry[- ]?ons?|prams?|pushchairs?)`

var (
	luggageClearRe  = regexp.MustCompile(`(?i)\b(?:no|without|remove(?: the| my)?|take off(?: the)?|don'?t (?:have|need)(?: any| the)?|cancel the)\s+` + luggageWords + `\b`)
	luggagePhraseRe = regexp.MustCompile(`(?i)\b((?:[\w-]+\s)?` + luggageWords + `)\b`)

	viaRe = regexp.MustCompile(`(?i)\b(stop (?:at|by|off at) .+? for \d+ min(?:ute)?s?)[,.]?\s*(?:and\s+)?then\s+(?:(?:go|carry on|continue)\s+)?(?:on\s+)?(?:to\s+)?(.+)$`)

	changeDropRe = regexp.MustCompile(`(?i)\bchange (?:the )?(?:drop[- ]?off|destination)(?: location| address| point)? to\s+(.+)$`)
	changePickRe = regexp.MustCompile(`(?i)\bchange (?:the )?pick[- ]?up(?: location| address| point)? to\s+(.+)$`)
	changeTimeRe = regexp.MustCompile(`(?i)\b(?:change|move) (?:the )?(?:pickup )?time to\s+(.+)$`)

	fromToRe       = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+(?:to|towards)\s+(.+)$`)
	pickThenDropRe = regexp.MustCompile(`(?i)\bpick (?:me|us) up (?:at|from|outside|on)\s+(.+?)[,]?\s+(?:and\s+|then\s+)*(?:take (?:me|us)|drive (?:me|us)|drop (?:me|us)(?: off)?|go)\s+to\s+(.+)$`)

	pickupRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bpick (?:me|us) up (?:at|from|outside|on)\s+(.+)$`),
		regexp.MustCompile(`(?i)\bpick[- ]?up (?:is |will be )?(?:at|from)\s+(.+)$`),
		regexp.MustCompile(`(?i)\bcollect (?:me|us) (?:at|from|outside)\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:i'?m|i am|we'?re|we are) (?:waiting )?(?:at|outside)\s+(.+)$`),
		regexp.MustCompile(`(?i)\bwaiting (?:at|outside)\s+(.+)$`),
		regexp.MustCompile(`(?i)\bfrom\s+(.+)$`),
	}

	dropoffRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btake (?:me|us) to\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:drive|bring) (?:me|us) to\s+(.+)$`),
		regexp.MustCompile(`(?i)\bdrop (?:me|us) (?:off )?(?:at|by)\s+(.+)$`),
		regexp.MustCompile(`(?i)\bgoing to\s+(.+)$`),
		regexp.MustCompile(`(?i)\bgo to\s+(.+)$`),
		regexp.MustCompile(`(?i)\bget (?:me |us )?to\s+(.+)$`),
		regexp.MustCompile(`(?i)\bhead(?:ing)? (?:to|for)\s+(.+)$`),
		regexp.MustCompile(`(?i)\bneed (?:a )?(?:taxi|cab|car|ride|lift) to\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:taxi|cab|ride) to\s+(.+)$`),
	}

	gpsRe = regexp.MustCompile(`(?i)\b(?:my (?:current )?location|current location|where i am|right here|i'?m here|from here|use my location)\b`)

	// locStopRe marks where a captured location ends: punctuation, a
	// following clause, or a trailing time/courtesy phrase.
	locStopRe = regexp.MustCompile(`(?i)[,.!?;]|\s+(?:please\b|thanks\b|thank you\b|asap\b|as soon as possible\b|right now\b|now\b|today\b|tonight\b|tomorrow\b|this (?:morning|afternoon|evening)\b|at \d|in \d|for \d|by \d|on (?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b|and (?:then|take|go|drop|we|i|there)\b|then\b|take me\b|with\b|carrying\b|there(?:'s| are| will)\b|we(?:'re| are| have|'ve)\b)`)

	verbBlacklist = map[string]bool{
		"need": true, "be": true, "get": true, "have": true, "take": true,
		"book": true, "order": true, "want": true, "make": true, "call": true,
		"know": true, "say": true, "see": true, "pay": true, "booking": true,
		"it": true, "that": true,
	}

	asapRe   = regexp.MustCompile(`(?i)\b(?:asap|as soon as possible|right ?now|right away|straight ?away|immediately|now)\b`)
	inRelRe  = regexp.MustCompile(`(?i)\bin (?:about |around )?(\d{1,2}|an?|one|two|three|four|five|ten|fifteen|twenty|thirty) (minutes?|mins?|hours?|hrs?)\b`)
	tmrwRe   = regexp.MustCompile(`(?i)\btomorrow\b`)
	dpartRe  = regexp.MustCompile(`(?i)\b(morning|afternoon|evening|tonight|night)\b`)
	wkdayRe  = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	merClkRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)\b`)
	oclockRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s*o'?clock\b`)
	halfRe   = regexp.MustCompile(`(?i)\bhalf past (\d{1,2})\b`)
	qPastRe  = regexp.MustCompile(`(?i)\bquarter past (\d{1,2})\b`)
	qToRe    = regexp.MustCompile(`(?i)\bquarter to (\d{1,2})\b`)
	atClkRe  = regexp.MustCompile(`(?i)\b(?:at|by|around|about)\s+(\d{1,2})(?:[:.](\d{2}))?\b`)

	paxRe    = regexp.MustCompile(`(?i)\b(\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten|a couple|couple|a few)\s+(?:of us|of them|people|persons|passengers|adults|guests)\b`)
	partyRe  = regexp.MustCompile(`(?i)\b(?:party|group) of (\d{1,2}|two|three|four|five|six|seven|eight|nine|ten)\b`)
	soloRe   = regexp.MustCompile(`(?i)\b(?:just me|only me|me only|on my own|by myself)\b`)
	wordNums = map[string]int{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"fifteen": 15, "twenty": 20, "thirty": 30,
		"a couple": 2, "couple": 2, "a few": 3,
	}

	specialRe = regexp.MustCompile(`(?i)\b(wheelchair(?: accessible)?(?: vehicle| access| taxi)?|child seat|baby seat|booster seat|car seat|guide dog|(?:with (?:a |my |the )?)?(?:dog|cat|pet)\b|estate car|saloon car|minibus|eight[- ]seater|six[- ]seater|need a receipt)`)

	weekdays = map[string]time.Weekday{
		"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
		"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
		"sunday": time.Sunday,
	}
)

// Extract never fails: an unparseable transcript yields empty slots with
// low confidence, which the dialogue layer turns into a clarifying
// question.
func (e *RuleExtractor) Extract(_ context.Context, req Request) (*BookingSlots, error) {
	slots := &BookingSlots{Intent: IntentNewBooking, Confidence: ConfidenceLow}
	if req.Mode == ModeUpdate {
		slots.Intent = IntentUpdateBooking
	}

	text := strings.Join(strings.Fields(req.Transcript), " ")
	if text == "" {
		return slots, nil
	}

	work, luggage := extractLuggage(text)
	slots.Luggage = luggage

	var specials []string

	// Intermediate stop: the via clause goes to special requests verbatim;
	// the final destination (not the via stop) becomes the dropoff.
	viaHandled := false
	pickupSearch := work
	if idx := viaRe.FindStringSubmatchIndex(work); idx != nil {
		specials = append(specials, strings.TrimSpace(work[idx[2]:idx[3]]))
		if loc := cleanLocation(work[idx[4]:idx[5]]); loc != nil {
			slots.DropoffLocation = loc
		}
		viaHandled = true
		// Only the text before the via clause can name the pickup.
		pickupSearch = work[:idx[2]]
	}

	// Explicit change verbs (update phrasing).
	var timeText string
	if m := changeDropRe.FindStringSubmatch(work); m != nil && slots.DropoffLocation == nil {
		slots.DropoffLocation = cleanLocation(m[1])
	}
	if m := changePickRe.FindStringSubmatch(work); m != nil {
		slots.PickupLocation = cleanLocation(m[1])
	}
	if m := changeTimeRe.FindStringSubmatch(work); m != nil {
		timeText = m[1]
	}

	// Combined "from X to Y" utterances: both sides must come out of the
	// same call.
	if slots.PickupLocation == nil && slots.DropoffLocation == nil && !viaHandled {
		if m := pickThenDropRe.FindStringSubmatch(work); m != nil {
			slots.PickupLocation = cleanLocation(m[1])
			slots.DropoffLocation = cleanLocation(m[2])
		} else if m := fromToRe.FindStringSubmatch(work); m != nil {
			slots.PickupLocation = cleanLocation(m[1])
			slots.DropoffLocation = cleanLocation(m[2])
		}
	}

	if slots.PickupLocation == nil {
		for _, re := range pickupRes {
			if m := re.FindStringSubmatch(pickupSearch); m != nil {
				if loc := cleanLocation(m[1]); loc != nil {
					slots.PickupLocation = loc
					break
				}
			}
		}
	}
	if slots.DropoffLocation == nil && !viaHandled {
		for _, re := range dropoffRes {
			if m := re.FindStringSubmatch(work); m != nil {
				if loc := cleanLocation(m[1]); loc != nil {
					slots.DropoffLocation = loc
					break
				}
			}
		}
	}

	// GPS self-reference maps to the sentinel, but only when no spoken
	// address won the pickup slot.
	if slots.PickupLocation != nil && isGPSPhrase(*slots.PickupLocation) {
		slots.PickupLocation = strPtr(PickupCurrentLocation)
	} else if slots.PickupLocation == nil && gpsRe.MatchString(work) {
		slots.PickupLocation = strPtr(PickupCurrentLocation)
	}

	if timeText == "" {
		timeText = work
	}
	slots.PickupTime = parseTimePhrase(timeText, req.ReferenceTime)

	slots.Passengers = parsePassengers(work)

	for _, m := range specialRe.FindAllString(work, -1) {
		specials = append(specials, strings.TrimSpace(m))
	}
	if len(specials) > 0 {
		slots.SpecialRequests = strPtr(strings.Join(specials, "; "))
	}

	slots.Confidence = scoreConfidence(req.Mode, slots)
	return slots, nil
}

func extractLuggage(text string) (string, *string) {
	if idx := luggageClearRe.FindStringIndex(text); idx != nil {
		return maskSpan(text, idx[0], idx[1]), strPtr(LuggageCleared)
	}
	if idx := luggagePhraseRe.FindStringSubmatchIndex(text); idx != nil {
		phrase := stripArticle(strings.TrimSpace(text[idx[2]:idx[3]]))
		return maskSpan(text, idx[2], idx[3]), strPtr(phrase)
	}
	return text, nil
}

func maskSpan(text string, start, end int) string {
	return text[:start] + strings.Repeat(" ", end-start) + text[end:]
}

// cleanLocation cuts a captured tail at the first clause boundary, strips
// a single leading article and rejects captures that are clearly not
// places.
func cleanLocation(s string) *string {
	if idx := locStopRe.FindStringIndex(s); idx != nil {
		s = s[:idx[0]]
	}
	s = stripArticle(strings.Trim(s, " .,!?;:'\""))
	if s == "" {
		return nil
	}
	first := strings.ToLower(strings.Fields(s)[0])
	if verbBlacklist[first] {
		return nil
	}
	return strPtr(s)
}

func stripArticle(s string) string {
	lower := strings.ToLower(s)
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(lower, art) {
			return strings.TrimSpace(s[len(art):])
		}
	}
	return s
}

func isGPSPhrase(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "here", "my location", "my current location", "current location", "where i am":
		return true
	}
	return false
}

// parseTimePhrase resolves a time phrase relative to ref. Absent any
// phrase it returns nil — never "ASAP" by default. Times already in the
// past roll forward to the next valid occurrence (next day for clock
// times, next week for weekdays).
func parseTimePhrase(text string, ref time.Time) *string {
	if ref.IsZero() {
		ref = time.Now()
	}
	lower := strings.ToLower(text)

	if m := inRelRe.FindStringSubmatch(lower); m != nil {
		n := numFromToken(m[1])
		d := time.Duration(n) * time.Minute
		if strings.HasPrefix(m[2], "h") {
			d = time.Duration(n) * time.Hour
		}
		return strPtr(ref.Add(d).Format(slotTimeLayout))
	}

	if asapRe.MatchString(lower) {
		return strPtr(TimeASAP)
	}

	hasDay := false
	dayOffset := 0
	if tmrwRe.MatchString(lower) {
		hasDay = true
		dayOffset = 1
	}
	var weekday *time.Weekday
	if m := wkdayRe.FindStringSubmatch(lower); m != nil {
		wd := weekdays[m[1]]
		weekday = &wd
		hasDay = true
	}
	daypart := ""
	if m := dpartRe.FindStringSubmatch(lower); m != nil {
		daypart = m[1]
	}

	hour, minute, hasClock, meridiem := findClock(lower)
	if !hasClock && daypart == "" && !hasDay {
		return nil
	}

	switch {
	case hasClock && meridiem == "pm" && hour < 12:
		hour += 12
	case hasClock && meridiem == "am" && hour == 12:
		hour = 0
	case hasClock && meridiem == "":
		// Use the daypart to disambiguate a bare clock time.
		switch daypart {
		case "afternoon", "evening", "tonight", "night":
			if hour < 12 {
				hour += 12
			}
		}
	case !hasClock:
		// Daypart or day alone: a representative hour.
		switch daypart {
		case "morning":
			hour = 9
		case "afternoon":
			hour = 14
		case "evening", "tonight":
			hour = 18
		case "night":
			hour = 21
		default:
			hour = 9
		}
	}

	base := ref.AddDate(0, 0, dayOffset)
	if weekday != nil {
		delta := (int(*weekday) - int(ref.Weekday()) + 7) % 7
		base = ref.AddDate(0, 0, delta)
	}
	t := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, ref.Location())

	if t.Before(ref) {
		if weekday != nil {
			t = t.AddDate(0, 0, 7)
		} else {
			t = t.AddDate(0, 0, 1)
		}
	}
	return strPtr(t.Format(slotTimeLayout))
}

func findClock(lower string) (hour, minute int, ok bool, meridiem string) {
	if m := halfRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h, 30, true, ""
	}
	if m := qPastRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h, 15, true, ""
	}
	if m := qToRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return (h + 23) % 24, 45, true, ""
	}
	if m := merClkRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		mn := 0
		if m[2] != "" {
			mn, _ = strconv.Atoi(m[2])
		}
		return h, mn, true, strings.ToLower(m[3])
	}
	if m := oclockRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h, 0, true, ""
	}
	// "at N" with no meridiem is only a time when the next token isn't a
	// word — "at 10 High Street" is an address, "at 10 tomorrow" a time.
	if idx := atClkRe.FindStringSubmatchIndex(lower); idx != nil {
		tail := strings.TrimLeft(lower[idx[1]:], " ")
		if clockTailOK(tail) {
			h, _ := strconv.Atoi(lower[idx[2]:idx[3]])
			mn := 0
			if idx[4] >= 0 {
				mn, _ = strconv.Atoi(lower[idx[4]:idx[5]])
			}
			if h <= 23 {
				return h, mn, true, ""
			}
		}
	}
	return 0, 0, false, ""
}

func clockTailOK(tail string) bool {
	if tail == "" {
		return true
	}
	if !('a' <= tail[0] && tail[0] <= 'z') {
		return true
	}
	word := tail
	if i := strings.IndexAny(tail, " .,!?"); i >= 0 {
		word = tail[:i]
	}
	switch word {
	case "tomorrow", "today", "tonight", "this", "in", "on", "please", "thanks", "then", "and", "sharp":
		return true
	}
	return false
}

func parsePassengers(text string) *int {
	if m := paxRe.FindStringSubmatch(text); m != nil {
		if n := numFromToken(m[1]); n > 0 {
			return intPtr(n)
		}
	}
	if m := partyRe.FindStringSubmatch(text); m != nil {
		if n := numFromToken(m[1]); n > 0 {
			return intPtr(n)
		}
	}
	if soloRe.MatchString(text) {
		return intPtr(1)
	}
	return nil
}

func numFromToken(tok string) int {
	tok = strings.ToLower(strings.TrimSpace(tok))
	if n, err := strconv.Atoi(tok); err == nil {
		return n
	}
	return wordNums[tok]
}

func scoreConfidence(mode Mode, s *BookingSlots) Confidence {
	if mode == ModeUpdate {
		switch {
		case s.PickupLocation != nil || s.DropoffLocation != nil || s.PickupTime != nil:
			return ConfidenceHigh
		case s.Passengers != nil || s.Luggage != nil || s.SpecialRequests != nil:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	}
	switch {
	case s.PickupLocation != nil && s.DropoffLocation != nil:
		return ConfidenceHigh
	case s.PickupLocation != nil || s.DropoffLocation != nil:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
