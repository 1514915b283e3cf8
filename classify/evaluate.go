package classify

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/jaldrishti/jaldrishti"
)

// evaluateTags turns a tagging response into a verdict.
func evaluateTags(p jaldrishti.ClassifierPolicy, res *jaldrishti.TagResult) jaldrishti.ImageAnalysisResult {
	found := make(map[string]struct{})
	for _, tag := range res.Tags {
		name := strings.ToLower(strings.TrimSpace(tag.Name))
		if tag.Confidence > p.TagMinConfidence && slices.Contains(p.Lexicon, name) {
			found[name] = struct{}{}
		}
	}

	var caption string
	var captionConfidence float64
	if len(res.Captions) > 0 {
		caption = res.Captions[0].Text
		captionConfidence = res.Captions[0].Confidence
	}
	description := strings.ToLower(caption)

	tags := make([]string, 0, len(found))
	for name := range found {
		tags = append(tags, name)
	}
	slices.Sort(tags)

	result := jaldrishti.ImageAnalysisResult{
		Waterlogged:    len(found) > 0 || mentionsAny(description, p.Lexicon),
		Severity:       jaldrishti.SeverityLow,
		EstimatedDepth: p.DryDepth,
		Method:         jaldrishti.MethodAzure,
		Tags:           tags,
		Caption:        caption,
	}
	if !result.Waterlogged {
		return result
	}

	_, floodTag := found["flood"]
	_, puddleTag := found["puddle"]
	flood := floodTag || strings.Contains(description, "flood")
	puddle := puddleTag || strings.Contains(description, "puddle")

	confidence := captionConfidence*100 + float64(len(found))*p.TagBoost
	if flood {
		confidence += p.FloodBoost
	}
	if puddle {
		confidence += p.PuddleBoost
	}
	if strings.Contains(description, "street") && strings.Contains(description, "water") {
		confidence += p.StreetWaterBoost
	}
	confidence = math.Min(confidence, p.MaxConfidence)
	if flood {
		confidence = math.Max(confidence, p.FloodFloor)
	}
	result.Confidence = round(math.Max(confidence, 0), 2)

	switch {
	case flood:
		result.Severity = jaldrishti.SeverityHigh
		result.EstimatedDepth = p.FloodDepth
	case puddleTag:
		result.Severity = jaldrishti.SeverityLow
		result.EstimatedDepth = p.PuddleDepth
	default:
		result.Severity = jaldrishti.SeverityModerate
		result.EstimatedDepth = p.DefaultDepth
	}
	return result
}

// evaluateCoverage turns a water coverage percentage into a verdict.
func evaluateCoverage(p jaldrishti.ClassifierPolicy, percentage float64) jaldrishti.ImageAnalysisResult {
	result := jaldrishti.ImageAnalysisResult{
		Waterlogged:    percentage > p.WaterThreshold,
		Confidence:     round(math.Min(math.Max(percentage, 0), p.MaxConfidence), 2),
		Severity:       jaldrishti.SeverityLow,
		EstimatedDepth: p.DryDepth,
		Method:         jaldrishti.MethodLocal,
		Tags:           []string{},
	}
	switch {
	case percentage > p.HighCoverage:
		result.Severity = jaldrishti.SeverityHigh
	case percentage > p.ModerateCoverage:
		result.Severity = jaldrishti.SeverityModerate
	}
	if result.Waterlogged {
		result.EstimatedDepth = fmt.Sprintf("%.1f ft", round(percentage/p.DepthDivisor, 1))
	}
	return result
}

func mentionsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
