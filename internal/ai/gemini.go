package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiExtractor implements Extractor using Google's Gemini models.
type GeminiExtractor struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiExtractor initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Flash keeps latency low; callers are on a live phone call.
	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"

	// Near-zero temperature: extraction must be repeatable, not creative.
	model.SetTemperature(0.1)

	return &GeminiExtractor{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (e *GeminiExtractor) Close() {
	e.client.Close()
}

// wireSlots is the model's reply shape. Treated as untrusted input.
type wireSlots struct {
	PickupLocation  *string `json:"pickup_location"`
	DropoffLocation *string `json:"dropoff_location"`
	PickupTime      *string `json:"pickup_time"`
	Passengers      *int    `json:"number_of_passengers"`
	Luggage         *string `json:"luggage"`
	SpecialRequests *string `json:"special_requests"`
	Intent          string  `json:"intent"`
	Confidence      string  `json:"confidence"`
}

// Extract sends the transcript through the rule prompt and parses the
// JSON reply into BookingSlots.
func (e *GeminiExtractor) Extract(ctx context.Context, req Request) (*BookingSlots, error) {
	prompt := buildExtractionPrompt(req)

	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// JSON mode should prevent markdown fences, but the reply is untrusted.
	cleanJSON := cleanJSONString(responseText.String())

	var wire wireSlots
	if err := json.Unmarshal([]byte(cleanJSON), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	return sanitizeWireSlots(wire, req.Mode), nil
}

// sanitizeWireSlots normalizes an untrusted model reply: blank strings
// become nil, enums fall back to safe defaults.
func sanitizeWireSlots(w wireSlots, mode Mode) *BookingSlots {
	slots := &BookingSlots{
		PickupLocation:  trimmedOrNil(w.PickupLocation),
		DropoffLocation: trimmedOrNil(w.DropoffLocation),
		PickupTime:      trimmedOrNil(w.PickupTime),
		Luggage:         trimmedOrNil(w.Luggage),
		SpecialRequests: trimmedOrNil(w.SpecialRequests),
	}
	if w.Passengers != nil && *w.Passengers > 0 {
		slots.Passengers = w.Passengers
	}
	switch Intent(w.Intent) {
	case IntentNewBooking, IntentUpdateBooking:
		slots.Intent = Intent(w.Intent)
	default:
		slots.Intent = IntentNewBooking
		if mode == ModeUpdate {
			slots.Intent = IntentUpdateBooking
		}
	}
	switch Confidence(w.Confidence) {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		slots.Confidence = Confidence(w.Confidence)
	default:
		slots.Confidence = ConfidenceLow
	}
	return slots
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" || strings.EqualFold(t, "null") {
		return nil
	}
	return &t
}

// buildExtractionPrompt constructs the instructions for the model.
func buildExtractionPrompt(req Request) string {
	refTime := req.ReferenceTime
	if refTime.IsZero() {
		refTime = time.Now()
	}
	cityHint := req.CityHint
	if cityHint == "" {
		cityHint = "UNKNOWN"
	}

	existingJSON := "NONE"
	if req.Mode == ModeUpdate && req.Existing != nil {
		if raw, err := json.Marshal(req.Existing); err == nil {
			existingJSON = string(raw)
		}
	}

	return fmt.Sprintf(`Role: You extract taxi booking details from a phone call transcript.
Context:
- Current Time: %s (%s)
- Caller's Likely City: %s
- Mode: %s
- Existing Booking (context only, NEVER copy values from it): %s

RULES (ALL MANDATORY):

1. VERBATIM ONLY — NEVER GUESS:
   - Every extracted location is the speaker's EXACT words, minus at most
     one leading article ("the"/"a"/"an").
   - NEVER correct spelling, complete partial addresses, or substitute a
     known place name. If a field was not clearly spoken, output null.

2. GPS SELF-REFERENCE:
   - "my location", "here", "where I am" with NO other address/landmark in
     the utterance -> pickup_location = "CURRENT_LOCATION".
   - If a real address or landmark is also spoken, use that instead.

3. BOTH SIDES IN ONE UTTERANCE:
   - "from X to Y", "pick me up at X take me to Y" -> BOTH
     pickup_location AND dropoff_location MUST be populated in this one
     reply. Returning only one side when both were spoken is a defect.

4. INTERMEDIATE STOP:
   - "stop at X for N minutes, then Y" -> special_requests carries the via
     clause verbatim (location and duration); dropoff_location is the
     FINAL destination Y, never the via stop X.

5. LUGGAGE (closed keyword set: luggage, baggage, bag(s), suitcase(s),
   holdall(s), backpack(s), rucksack(s), carry-on(s), pram(s),
   pushchair(s)):
   - Any match -> populate "luggage" with the spoken phrase. Luggage
     phrases must NOT appear in special_requests.
   - "no luggage" / "remove the luggage" -> luggage = "NO_LUGGAGE"
     (explicit removal; null would mean "unchanged").

6. TIME:
   - Resolve phrases against Current Time. Output "YYYY-MM-DD HH:MM" or
     the literal "ASAP" for immediate requests.
   - A computed time before Current Time rolls FORWARD: next day for bare
     clock times, next week for a weekday already passed.
   - No time phrase at all -> pickup_time = null. NEVER default to "ASAP".

7. UPDATE MODE:
   - Populate ONLY fields the speaker explicitly changed in this
     transcript. Every untouched field MUST be null even when the existing
     booking has a value. Re-emitting unchanged prior values is a defect.

8. PASSENGERS:
   - Accept digits and word numerals ("two", "a couple" = 2). Only count
     people, never luggage items.

9. CONFIDENCE:
   - Self-report "low" / "medium" / "high". Use "low" whenever the
     transcript is ambiguous — the dispatcher will ask a clarifying
     question instead of booking.

10. Output JSON Schema (no markdown, no extra keys):
{
  "pickup_location": "string or null",
  "dropoff_location": "string or null",
  "pickup_time": "YYYY-MM-DD HH:MM" | "ASAP" | null,
  "number_of_passengers": integer | null,
  "luggage": "string" | "NO_LUGGAGE" | null,
  "special_requests": "string or null",
  "intent": "new_booking" | "update_booking",
  "confidence": "low" | "medium" | "high"
}

Transcript: %s
`, refTime.Format("2006-01-02 15:04"), refTime.Weekday(), cityHint, req.Mode, existingJSON, req.Transcript)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
