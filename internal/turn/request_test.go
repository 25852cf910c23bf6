package turn

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		kind    Kind
		message string
	}{
		{
			name:    "not json",
			body:    `hello`,
			kind:    KindMalformedInput,
			message: "Invalid JSON input",
		},
		{
			name:    "json array",
			body:    `[{"channelId":"webchat"}]`,
			kind:    KindMalformedInput,
			message: "Invalid JSON input",
		},
		{
			name:    "truncated object",
			body:    `{"channelId":"webchat"`,
			kind:    KindMalformedInput,
			message: "Invalid JSON input",
		},
		{
			name:    "unsupported channel",
			body:    `{"channelId":"slack","conversation":{"id":"c1"},"text":"hi"}`,
			kind:    KindUnsupportedChannel,
			message: "Unsupported channel: slack",
		},
		{
			name:    "missing channel",
			body:    `{"conversation":{"id":"c1"},"text":"hi"}`,
			kind:    KindUnsupportedChannel,
			message: "Unsupported channel: ",
		},
		{
			name:    "missing conversation id",
			body:    `{"channelId":"webchat","text":"hi"}`,
			kind:    KindMissingConversationID,
			message: "Missing conversation ID",
		},
		{
			name:    "no input",
			body:    `{"channelId":"webchat","conversation":{"id":"c1"},"attachments":[]}`,
			kind:    KindNoInputProvided,
			message: "No user input provided",
		},
		{
			name:    "text and attachment",
			body:    `{"channelId":"webchat","conversation":{"id":"c1"},"text":"hi","attachments":[{"contentType":"image/png","contentUrl":"https://x.example/a.png"}]}`,
			kind:    KindAmbiguousInput,
			message: "Cannot process both text and attachment together",
		},
		{
			name:    "two attachments",
			body:    `{"channelId":"telegram","conversation":{"id":"c1"},"attachments":[{"contentType":"image/png","contentUrl":"https://x.example/a.png"},{"contentType":"image/png","contentUrl":"https://x.example/b.png"}]}`,
			kind:    KindUnsupportedAttachmentCount,
			message: "Multiple attachments not supported",
		},
		{
			name:    "unsupported audio",
			body:    `{"channelId":"webchat","conversation":{"id":"c1"},"attachments":[{"contentType":"audio/mpeg","contentUrl":"https://x.example/a.mp3"}]}`,
			kind:    KindUnsupportedAttachmentType,
			message: "Unsupported audio type: audio/mpeg",
		},
		{
			name:    "unsupported document",
			body:    `{"channelId":"webchat","conversation":{"id":"c1"},"attachments":[{"contentType":"application/pdf","contentUrl":"https://x.example/a.pdf"}]}`,
			kind:    KindUnsupportedAttachmentType,
			message: "Unsupported attachment type: application/pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, req)
			assert.Equal(t, tt.kind, KindOf(err))

			appErr := toAppError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestParseRequest_Accepted(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		channel  Channel
		modality Modality
		text     string
	}{
		{
			name:     "webchat text",
			body:     `{"channelId":"webchat","conversation":{"id":"c1"},"text":"Best time to visit Kyoto?"}`,
			channel:  ChannelWebchat,
			modality: TextInput{},
			text:     "Best time to visit Kyoto?",
		},
		{
			name:     "telegram ogg voice note",
			body:     `{"channelId":"telegram","conversation":{"id":"123456"},"attachments":[{"contentType":"audio/ogg","contentUrl":"https://files.example/voice.ogg"}]}`,
			channel:  ChannelTelegram,
			modality: AudioInput{Format: AudioOGG},
		},
		{
			name:     "wav with parameters",
			body:     `{"channelId":"webchat","conversation":{"id":"c1"},"attachments":[{"contentType":"audio/wav; codecs=1","contentUrl":"https://files.example/a.wav"}]}`,
			channel:  ChannelWebchat,
			modality: AudioInput{Format: AudioWAV},
		},
		{
			name:     "image without url is left to the fetch step",
			body:     `{"channelId":"webchat","conversation":{"id":"c1"},"attachments":[{"contentType":"image/jpeg"}]}`,
			channel:  ChannelWebchat,
			modality: ImageInput{},
		},
		{
			name:     "image",
			body:     `  {"channelId":"webchat","conversation":{"id":"c1"},"attachments":[{"contentType":"image/jpeg","contentUrl":"https://files.example/a.jpg","name":"beach.jpg"}]}`,
			channel:  ChannelWebchat,
			modality: ImageInput{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.channel, req.Channel)
			assert.Equal(t, tt.modality, req.Modality)
			assert.Equal(t, tt.text, req.Text)
			if tt.text == "" {
				require.NotNil(t, req.Attachment)
			} else {
				assert.Nil(t, req.Attachment)
			}
		})
	}
}

func TestClassifyAttachment(t *testing.T) {
	tests := []struct {
		contentType string
		want        Modality
		wantErr     bool
	}{
		{contentType: "audio/ogg", want: AudioInput{Format: AudioOGG}},
		{contentType: "AUDIO/OGG", want: AudioInput{Format: AudioOGG}},
		{contentType: "audio/wav", want: AudioInput{Format: AudioWAV}},
		{contentType: "image/png", want: ImageInput{}},
		{contentType: "image/webp", want: ImageInput{}},
		{contentType: "audio/mp4", wantErr: true},
		{contentType: "video/mp4", wantErr: true},
		{contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := ClassifyAttachment(tt.contentType)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindUnsupportedAttachmentType, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModalityName(t *testing.T) {
	assert.Equal(t, "text", ModalityName(TextInput{}))
	assert.Equal(t, "audio", ModalityName(AudioInput{Format: AudioWAV}))
	assert.Equal(t, "image", ModalityName(ImageInput{}))
	assert.Equal(t, "unknown", ModalityName(nil))
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindAmbiguousInput.Status())
	assert.Equal(t, http.StatusInternalServerError, KindAttachmentFetch.Status())
	assert.Equal(t, http.StatusInternalServerError, KindModelResponseMalformed.Status())
	assert.Equal(t, http.StatusInternalServerError, Kind("Unknown").Status())
}
