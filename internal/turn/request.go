package turn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// Channel is the messaging channel a turn arrived on.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelWebchat  Channel = "webchat"
)

func (c Channel) allowed() bool {
	return c == ChannelTelegram || c == ChannelWebchat
}

// Attachment is a single media item referenced by the incoming activity.
type Attachment struct {
	ContentType string `json:"contentType"`
	ContentURL  string `json:"contentUrl"`
	Name        string `json:"name,omitempty"`
}

// AudioFormat is the container of an audio attachment.
type AudioFormat string

const (
	AudioOGG AudioFormat = "ogg"
	AudioWAV AudioFormat = "wav"
)

// Modality is the kind of input a turn carries. It is one of TextInput,
// AudioInput or ImageInput.
type Modality interface {
	modality() string
}

type TextInput struct{}

type AudioInput struct {
	Format AudioFormat
}

type ImageInput struct{}

func (TextInput) modality() string  { return "text" }
func (AudioInput) modality() string { return "audio" }
func (ImageInput) modality() string { return "image" }

// ModalityName returns a short label for logs and metrics.
func ModalityName(m Modality) string {
	if m == nil {
		return "unknown"
	}
	return m.modality()
}

// Request is a validated turn. Exactly one of Text and Attachment is set.
type Request struct {
	Channel        Channel
	ConversationID string
	Text           string
	Attachment     *Attachment
	Modality       Modality
}

type activity struct {
	ChannelID    string `json:"channelId"`
	Conversation struct {
		ID string `json:"id"`
	} `json:"conversation"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
}

// ParseRequest decodes and validates a webhook body.
func ParseRequest(body []byte) (*Request, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, newError(KindMalformedInput, "Invalid JSON input", nil)
	}

	var act activity
	if err := json.Unmarshal(trimmed, &act); err != nil {
		return nil, newError(KindMalformedInput, "Invalid JSON input", err)
	}

	channel := Channel(act.ChannelID)
	if !channel.allowed() {
		return nil, newError(KindUnsupportedChannel, fmt.Sprintf("Unsupported channel: %s", act.ChannelID), nil)
	}

	if act.Conversation.ID == "" {
		return nil, newError(KindMissingConversationID, "Missing conversation ID", nil)
	}

	hasText := act.Text != ""
	hasAttachments := len(act.Attachments) > 0
	switch {
	case !hasText && !hasAttachments:
		return nil, newError(KindNoInputProvided, "No user input provided", nil)
	case hasText && hasAttachments:
		return nil, newError(KindAmbiguousInput, "Cannot process both text and attachment together", nil)
	case len(act.Attachments) > 1:
		return nil, newError(KindUnsupportedAttachmentCount, "Multiple attachments not supported", nil)
	}

	req := &Request{
		Channel:        channel,
		ConversationID: act.Conversation.ID,
	}

	if hasText {
		req.Text = act.Text
		req.Modality = TextInput{}
		return req, nil
	}

	att := act.Attachments[0]
	modality, err := ClassifyAttachment(att.ContentType)
	if err != nil {
		return nil, err
	}

	req.Attachment = &att
	req.Modality = modality
	return req, nil
}

// ClassifyAttachment maps a declared content type onto a Modality.
// Only audio/ogg, audio/wav and image/* are accepted.
func ClassifyAttachment(contentType string) (Modality, error) {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	major, minor, _ := strings.Cut(mediaType, "/")
	switch major {
	case "audio":
		switch AudioFormat(minor) {
		case AudioOGG:
			return AudioInput{Format: AudioOGG}, nil
		case AudioWAV:
			return AudioInput{Format: AudioWAV}, nil
		}
		return nil, newError(KindUnsupportedAttachmentType, fmt.Sprintf("Unsupported audio type: %s", contentType), nil)
	case "image":
		return ImageInput{}, nil
	}
	return nil, newError(KindUnsupportedAttachmentType, fmt.Sprintf("Unsupported attachment type: %s", contentType), nil)
}
