package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Stage names emitted by the analysis backend, in pipeline order. Stage
// events supersede each other; only the payloads accumulate.
type Stage string

const (
	StageAnalyzingImage      Stage = "analyzing_image"
	StageAnalysisComplete    Stage = "analysis_complete"
	StageGeneratingNarration Stage = "generating_narration"
	StageNarrationComplete   Stage = "narration_complete"
	StageGeneratingAudio     Stage = "generating_audio"
	StageAudioComplete       Stage = "audio_complete"
	StageError               Stage = "error"
)

// PlateSolving holds the solved sky coordinates of the image center.
type PlateSolving struct {
	RA          float64 `json:"ra,omitempty"`
	Dec         float64 `json:"dec,omitempty"`
	FieldOfView float64 `json:"field_of_view,omitempty"`
	PixelScale  float64 `json:"pixel_scale,omitempty"`
}

// SkyObject is one identified object in the frame.
type SkyObject struct {
	Name   string  `json:"name"`
	Type   string  `json:"type,omitempty"`
	RA     float64 `json:"ra,omitempty"`
	Dec    float64 `json:"dec,omitempty"`
	Legend string  `json:"legend,omitempty"`
}

// Result accumulates the payloads of a full analysis run.
type Result struct {
	PlateSolving  *PlateSolving     `json:"plate_solving,omitempty"`
	Objects       []SkyObject       `json:"identified_objects,omitempty"`
	Title         string            `json:"title,omitempty"`
	Narration     string            `json:"text,omitempty"`
	ObjectLegends map[string]string `json:"object_legends,omitempty"`
	AudioURL      string            `json:"audio_url,omitempty"`
}

// ProgressEvent is one step of the analysis stream: the stage that was just
// reached and the result accumulated so far. Err is set only for the error
// stage.
type ProgressEvent struct {
	Stage  Stage
	Result Result
	Err    error
}

// merge folds one stage payload into the accumulated result. Progress-only
// stages carry an empty payload and change nothing. Unknown stages are
// dropped with ok=false so the caller can log them.
func (r *Result) merge(stage Stage, data string) (ok bool, err error) {
	switch stage {
	case StageAnalyzingImage, StageGeneratingNarration, StageGeneratingAudio:
		return true, nil

	case StageAnalysisComplete:
		var payload struct {
			PlateSolving *PlateSolving `json:"plate_solving"`
			Objects      []SkyObject   `json:"identified_objects"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return true, nil
		}
		r.PlateSolving = payload.PlateSolving
		r.Objects = payload.Objects
		return true, nil

	case StageNarrationComplete:
		var payload struct {
			Title         string            `json:"title"`
			Text          string            `json:"text"`
			ObjectLegends map[string]string `json:"object_legends"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return true, nil
		}
		r.Title = payload.Title
		r.Narration = payload.Text
		r.ObjectLegends = payload.ObjectLegends
		for i := range r.Objects {
			if legend, ok := r.ObjectLegends[r.Objects[i].Name]; ok {
				r.Objects[i].Legend = legend
			}
		}
		return true, nil

	case StageAudioComplete:
		var payload struct {
			AudioURL string `json:"audio_url"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return true, nil
		}
		r.AudioURL = payload.AudioURL
		return true, nil

	case StageError:
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil || payload.Error == "" {
			return true, errors.New("analysis failed")
		}
		return true, fmt.Errorf("analysis failed: %s", payload.Error)
	}

	return false, nil
}
