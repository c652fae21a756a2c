package voice

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/mo7ami/backend-go/internal/config"
	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/metrics"
	"github.com/mo7ami/backend-go/internal/retrieval"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// whisper不返回置信度，按经验值上报
const transcriptionConfidence = 0.95

// SpeechClient 语音转写与合成客户端，由*openai.Client实现
type SpeechClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// TranscriptionResult 转写结果
type TranscriptionResult struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// SynthesisResult 合成结果
type SynthesisResult struct {
	Audio  []byte
	Voice  string
	Cached bool
}

// Service 语音服务：whisper转写与TTS合成，合成结果走进程内缓存
type Service struct {
	client SpeechClient
	cache  *SpeechCache
	cfg    config.VoiceConfig
	logger *zap.Logger
}

func NewService(client SpeechClient, cache *SpeechCache, cfg config.VoiceConfig, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Transcribe 转写音频，language为空时由转写文本判断语言
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*TranscriptionResult, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.TranscribeModel,
		Reader:   audio,
		FilePath: filename,
		Language: language,
	})
	if err != nil {
		s.logger.Error("transcription failed", zap.Error(err))
		return nil, apperrors.NewSystemError(apperrors.ErrCodeTranscribeFailed, "audio transcription failed").WithCause(err)
	}

	detected := language
	if detected == "" {
		detected = retrieval.DetectLanguage(resp.Text)
	}

	return &TranscriptionResult{
		Text:       resp.Text,
		Language:   detected,
		Confidence: transcriptionConfidence,
	}, nil
}

// Synthesize 合成语音，命中缓存时不调用TTS
func (s *Service) Synthesize(ctx context.Context, text, language, gender string, speed float64) (*SynthesisResult, error) {
	if speed <= 0 {
		speed = 1.0
	}
	voice := VoiceFor(language, gender)

	if audio, ok := s.cache.Get(text, voice, speed); ok {
		metrics.SpeechCacheHits.Inc()
		return &SynthesisResult{Audio: audio, Voice: voice, Cached: true}, nil
	}
	metrics.SpeechCacheMisses.Inc()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.cfg.TTSModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		s.logger.Error("speech synthesis failed", zap.Error(err))
		return nil, apperrors.NewSystemError(apperrors.ErrCodeSynthesisFailed, "speech synthesis failed").WithCause(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, apperrors.NewSystemError(apperrors.ErrCodeSynthesisFailed, "failed to read synthesized audio").WithCause(err)
	}

	s.cache.Set(text, voice, speed, audio)
	metrics.SpeechCacheEntries.Set(float64(s.cache.Len()))

	return &SynthesisResult{Audio: audio, Voice: voice, Cached: false}, nil
}

// 句末标点覆盖阿拉伯语与法语
var sentencePattern = regexp.MustCompile(`[.!?؟]+\s+`)

// SplitSentences 按句末标点切分长文本，保持原始顺序
func SplitSentences(text string) []string {
	parts := sentencePattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// SynthesizeStream 逐句合成并按原始顺序回调，每句独立走缓存
func (s *Service) SynthesizeStream(ctx context.Context, text, language, gender string, speed float64, yield func(sentence string, result *SynthesisResult) error) error {
	for _, sentence := range SplitSentences(text) {
		result, err := s.Synthesize(ctx, sentence, language, gender, speed)
		if err != nil {
			return err
		}
		if err := yield(sentence, result); err != nil {
			return err
		}
	}
	return nil
}
