package voice

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/mo7ami/backend-go/internal/config"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSpeechClient struct {
	transcript      string
	transcribeErr   error
	speechCalls     int
	transcribeCalls int
	lastSpeechReq   openai.CreateSpeechRequest
	audioByInput    map[string][]byte
}

func (f *fakeSpeechClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.transcribeCalls++
	if f.transcribeErr != nil {
		return openai.AudioResponse{}, f.transcribeErr
	}
	return openai.AudioResponse{Text: f.transcript}, nil
}

func (f *fakeSpeechClient) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.speechCalls++
	f.lastSpeechReq = req
	audio := f.audioByInput[req.Input]
	if audio == nil {
		audio = []byte(req.Input)
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(bytes.NewReader(audio))}, nil
}

func testService(client SpeechClient) *Service {
	cfg := config.VoiceConfig{
		CacheSize:       100,
		TTSModel:        "tts-1-hd",
		TranscribeModel: "whisper-1",
	}
	return NewService(client, NewSpeechCache(cfg.CacheSize), cfg, zap.NewNop())
}

func TestTranscribeDetectsLanguage(t *testing.T) {
	client := &fakeSpeechClient{transcript: "ما هي عقوبة السرقة؟"}
	svc := testService(client)

	result, err := svc.Transcribe(context.Background(), bytes.NewReader([]byte("audio")), "q.webm", "")
	assert.NoError(t, err)
	assert.Equal(t, "ما هي عقوبة السرقة؟", result.Text)
	assert.Equal(t, "ar", result.Language)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestTranscribeKeepsLanguageHint(t *testing.T) {
	client := &fakeSpeechClient{transcript: "Quelle est la peine?"}
	svc := testService(client)

	result, err := svc.Transcribe(context.Background(), bytes.NewReader(nil), "q.webm", "fr")
	assert.NoError(t, err)
	assert.Equal(t, "fr", result.Language)
}

func TestSynthesizeCachesResult(t *testing.T) {
	client := &fakeSpeechClient{}
	svc := testService(client)

	first, err := svc.Synthesize(context.Background(), "مرحبا بك", "ar", "", 1.0)
	assert.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "shimmer", first.Voice)
	assert.Equal(t, 1, client.speechCalls)
	assert.Equal(t, openai.SpeechModel("tts-1-hd"), client.lastSpeechReq.Model)

	// 第二次命中缓存，不再调用TTS
	second, err := svc.Synthesize(context.Background(), "مرحبا بك", "ar", "", 1.0)
	assert.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Audio, second.Audio)
	assert.Equal(t, 1, client.speechCalls)
}

func TestSynthesizeVoiceSelection(t *testing.T) {
	client := &fakeSpeechClient{}
	svc := testService(client)

	result, err := svc.Synthesize(context.Background(), "Bonjour", "fr", "male", 1.0)
	assert.NoError(t, err)
	assert.Equal(t, "onyx", result.Voice)

	// 未知语言回退到ar的default音色
	result, err = svc.Synthesize(context.Background(), "hello", "en", "", 1.0)
	assert.NoError(t, err)
	assert.Equal(t, "shimmer", result.Voice)
}

func TestSplitSentences(t *testing.T) {
	sentences := SplitSentences("الجملة الأولى؟ الجملة الثانية. La troisième phrase! La quatrième")
	assert.Equal(t, []string{
		"الجملة الأولى",
		"الجملة الثانية",
		"La troisième phrase",
		"La quatrième",
	}, sentences)

	assert.Empty(t, SplitSentences("   "))
}

func TestSynthesizeStreamOrderAndCaching(t *testing.T) {
	client := &fakeSpeechClient{}
	svc := testService(client)

	var got []string
	err := svc.SynthesizeStream(context.Background(), "Première phrase. Deuxième phrase. Première phrase. Fin", "fr", "", 1.0,
		func(sentence string, result *SynthesisResult) error {
			got = append(got, sentence)
			return nil
		})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Première phrase", "Deuxième phrase", "Première phrase", "Fin"}, got)
	// 重复句子走缓存，只合成三次
	assert.Equal(t, 3, client.speechCalls)
}
