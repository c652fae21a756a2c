package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/mo7ami/backend-go/internal/voice"
)

// VoiceController 语音转写与合成控制器
type VoiceController struct {
	BaseController
	voiceService *voice.Service
}

func (c *VoiceController) Prepare() {
	if r := GetRegistry(); r != nil {
		c.voiceService = r.Voice
	}
}

// POST /api/voice/transcribe
// multipart表单，audio为音频文件，language可选
func (c *VoiceController) Transcribe() {
	file, header, err := c.GetFile("audio")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	language := c.GetString("language")

	result, err := c.voiceService.Transcribe(c.Ctx.Request.Context(), file, header.Filename, language)
	if err != nil {
		c.ServeAppError(err)
		return
	}

	c.JSONSuccess(result)
}

type synthesizeRequest struct {
	Text     string  `json:"text" validate:"required,max=4000"`
	Language string  `json:"language,omitempty" validate:"omitempty,oneof=ar fr"`
	Gender   string  `json:"gender,omitempty" validate:"omitempty,oneof=female male neutral"`
	Speed    float64 `json:"speed,omitempty" validate:"omitempty,gte=0.25,lte=4"`
}

// POST /api/voice/synthesize
// 返回MP3音频，X-Speech-Cache标记缓存命中
func (c *VoiceController) Synthesize() {
	var req synthesizeRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, err.Error())
		return
	}

	result, err := c.voiceService.Synthesize(c.Ctx.Request.Context(), req.Text, req.Language, req.Gender, req.Speed)
	if err != nil {
		c.ServeAppError(err)
		return
	}

	c.Ctx.Output.Header("Content-Type", "audio/mpeg")
	c.Ctx.Output.Header("X-Speech-Voice", result.Voice)
	if result.Cached {
		c.Ctx.Output.Header("X-Speech-Cache", "HIT")
	} else {
		c.Ctx.Output.Header("X-Speech-Cache", "MISS")
	}
	c.Ctx.Output.SetStatus(http.StatusOK)
	c.Ctx.Output.Body(result.Audio)
}

// POST /api/voice/synthesize/stream
// 逐句合成并以分块传输推送MP3音频
func (c *VoiceController) SynthesizeStream() {
	var req synthesizeRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, err.Error())
		return
	}

	writer := c.Ctx.ResponseWriter
	flusher, _ := writer.ResponseWriter.(http.Flusher)

	c.Ctx.Output.Header("Content-Type", "audio/mpeg")
	c.Ctx.Output.Header("Cache-Control", "no-cache")

	err := c.voiceService.SynthesizeStream(c.Ctx.Request.Context(), req.Text, req.Language, req.Gender, req.Speed,
		func(sentence string, result *voice.SynthesisResult) error {
			if _, err := writer.Write(result.Audio); err != nil {
				return err
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		})
	if err != nil && !writer.Started {
		c.ServeAppError(err)
	}
}

// GET /api/voice/voices
func (c *VoiceController) Voices() {
	c.JSONSuccess(map[string]interface{}{
		"voices": voice.ListProfiles(),
	})
}
