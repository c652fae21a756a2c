package voice

// VoiceProfile 单个语音配置项
type VoiceProfile struct {
	Language string `json:"language"`
	Gender   string `json:"gender"`
	Voice    string `json:"voice"`
}

// voiceProfiles 按语言键入的音色表，每种语言必须带default项
var voiceProfiles = map[string]map[string]string{
	"ar": {
		"default": "shimmer",
		"female":  "shimmer",
		"male":    "onyx",
		"neutral": "alloy",
	},
	"fr": {
		"default": "nova",
		"female":  "nova",
		"male":    "onyx",
		"neutral": "echo",
	},
}

// VoiceFor 选择音色：未知语言回退到ar，未知性别回退到default
func VoiceFor(language, gender string) string {
	profiles, ok := voiceProfiles[language]
	if !ok {
		profiles = voiceProfiles["ar"]
	}
	if voice, ok := profiles[gender]; ok {
		return voice
	}
	return profiles["default"]
}

// ListProfiles 枚举全部语音配置，供接口展示
func ListProfiles() []VoiceProfile {
	languages := []string{"ar", "fr"}
	genders := []string{"default", "female", "male", "neutral"}

	profiles := make([]VoiceProfile, 0, len(languages)*len(genders))
	for _, lang := range languages {
		for _, gender := range genders {
			profiles = append(profiles, VoiceProfile{
				Language: lang,
				Gender:   gender,
				Voice:    voiceProfiles[lang][gender],
			})
		}
	}
	return profiles
}
