package turn

import (
	"context"
	"log/slog"
)

// AttachmentFetcher downloads attachment bytes.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// AudioTranscoder converts an ogg stream into 16 kHz mono wav.
type AudioTranscoder interface {
	ToWAV(ctx context.Context, ogg []byte) ([]byte, error)
}

// SpeechRecognizer turns wav audio into text. An empty result means no
// confident recognition.
type SpeechRecognizer interface {
	Configured() bool
	Recognize(ctx context.Context, wav []byte) (string, error)
}

// ImageDescriber returns a short description of an image, or "" when it has none.
type ImageDescriber interface {
	Configured() bool
	Describe(ctx context.Context, image []byte) (string, error)
}

// Normalized is the textual form of the current turn's input.
type Normalized struct {
	Text        string
	Transcript  string
	Description string
	Caption     string

	// Degraded lists the kinds of enrichment failures that were tolerated.
	Degraded []Kind
}

// Normalizer converts the turn's input modality into text fragments.
type Normalizer struct {
	fetcher    AttachmentFetcher
	transcoder AudioTranscoder
	speech     SpeechRecognizer
	vision     ImageDescriber
}

func NewNormalizer(fetcher AttachmentFetcher, transcoder AudioTranscoder, speech SpeechRecognizer, vision ImageDescriber) *Normalizer {
	return &Normalizer{
		fetcher:    fetcher,
		transcoder: transcoder,
		speech:     speech,
		vision:     vision,
	}
}

// Normalize returns the text fragments of req. Fetch failures and missing
// credentials abort the turn; recognition failures are recorded in Degraded.
func (n *Normalizer) Normalize(ctx context.Context, req *Request) (*Normalized, error) {
	switch m := req.Modality.(type) {
	case AudioInput:
		return n.audio(ctx, req, m.Format)
	case ImageInput:
		return n.image(ctx, req)
	default:
		return &Normalized{Text: req.Text}, nil
	}
}

func (n *Normalizer) audio(ctx context.Context, req *Request, format AudioFormat) (*Normalized, error) {
	out := &Normalized{}

	data, err := n.fetcher.Fetch(ctx, req.Attachment.ContentURL)
	if err != nil {
		return nil, newError(KindAttachmentFetch, "Failed to retrieve audio attachment", err)
	}
	if len(data) == 0 {
		return out, nil
	}

	if n.speech == nil || !n.speech.Configured() {
		return nil, newError(KindConfiguration, "Speech service credentials not configured", nil)
	}

	wav := data
	if format == AudioOGG {
		wav, err = n.transcoder.ToWAV(ctx, data)
		if err != nil {
			slog.Error("transcoding audio attachment",
				"conversation_id", req.ConversationID,
				"error", newError(KindTranscode, "ffmpeg conversion failed", err))
			out.Degraded = append(out.Degraded, KindTranscriptionUnavailable)
			return out, nil
		}
	}

	text, err := n.speech.Recognize(ctx, wav)
	if err != nil {
		slog.Error("speech service error",
			"conversation_id", req.ConversationID,
			"error", err)
		out.Degraded = append(out.Degraded, KindTranscriptionUnavailable)
		return out, nil
	}
	if text == "" {
		slog.Warn("speech not recognized", "conversation_id", req.ConversationID)
		out.Degraded = append(out.Degraded, KindTranscriptionUnavailable)
		return out, nil
	}

	out.Transcript = text
	return out, nil
}

func (n *Normalizer) image(ctx context.Context, req *Request) (*Normalized, error) {
	data, err := n.fetcher.Fetch(ctx, req.Attachment.ContentURL)
	if err != nil {
		return nil, newError(KindAttachmentFetch, "Failed to retrieve image attachment", err)
	}

	out := &Normalized{Caption: req.Attachment.Name}
	if len(data) == 0 {
		return out, nil
	}

	if n.vision == nil || !n.vision.Configured() {
		return nil, newError(KindConfiguration, "Vision service credentials not configured", nil)
	}

	desc, err := n.vision.Describe(ctx, data)
	if err != nil {
		slog.Error("computer vision error",
			"conversation_id", req.ConversationID,
			"error", err)
		out.Degraded = append(out.Degraded, KindDescriptionUnavailable)
		return out, nil
	}
	out.Description = desc
	return out, nil
}
