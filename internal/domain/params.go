package domain

import "fmt"

// EmotionDims is the length of the emotion weight vector the model accepts.
const EmotionDims = 8

// Bounds for the optional fixed-length generation controls.
const (
	MinMaxTokens     = 50
	MaxMaxTokens     = 5000
	MinLengthPenalty = -2.0
	MaxLengthPenalty = 2.0
)

// GenerationParams is the optional parameter bundle collected in Advanced
// mode. EmotionText and EmotionVector are mutually exclusive; when both are
// present the text descriptor wins and the vector is not sent.
type GenerationParams struct {
	EmotionVector *[EmotionDims]float64 `json:"emotionVector,omitempty"`
	EmotionText   string                `json:"emotionText,omitempty"`
	FixedLength   bool                  `json:"fixedLength"`
	MaxTokens     int                   `json:"maxTokens,omitempty"`
	LengthPenalty float64               `json:"lengthPenalty,omitempty"`
}

// Validate checks parameter bounds before any job is started.
func (p *GenerationParams) Validate() error {
	if p == nil {
		return nil
	}

	if p.EmotionVector != nil {
		for i, w := range p.EmotionVector {
			if w < 0.0 || w > 1.0 {
				return E(ErrValidationFailed,
					fmt.Sprintf("emotion weight %d is %.3f, must be within [0.0, 1.0]", i, w))
			}
		}
	}
	if p.FixedLength {
		if p.MaxTokens < MinMaxTokens || p.MaxTokens > MaxMaxTokens {
			return E(ErrValidationFailed,
				fmt.Sprintf("max tokens is %d, must be within [%d, %d]", p.MaxTokens, MinMaxTokens, MaxMaxTokens))
		}
		if p.LengthPenalty < MinLengthPenalty || p.LengthPenalty > MaxLengthPenalty {
			return E(ErrValidationFailed,
				fmt.Sprintf("length penalty is %.2f, must be within [%.1f, %.1f]", p.LengthPenalty, MinLengthPenalty, MaxLengthPenalty))
		}
	}
	return nil
}
