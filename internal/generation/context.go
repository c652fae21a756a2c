package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mo7ami/backend-go/internal/models"
	"github.com/mo7ami/backend-go/internal/retrieval"
)

// Citation 答案引用的法律来源
type Citation struct {
	Source    string `json:"source"`
	Article   string `json:"article,omitempty"`
	Reference string `json:"reference,omitempty"`
	URL       string `json:"url,omitempty"`
}

// contextLabels 上下文块头部的字段标签，按语言键入
var contextLabels = map[string]struct {
	OfficialRef string
	Article     string
	Document    string
	Similarity  string
	Placeholder string
}{
	"ar": {
		OfficialRef: "المرجع الرسمي",
		Article:     "المادة",
		Document:    "الوثيقة",
		Similarity:  "التشابه",
		Placeholder: "وثيقة قانونية",
	},
	"fr": {
		OfficialRef: "Référence officielle",
		Article:     "Article",
		Document:    "Document",
		Similarity:  "Similarité",
		Placeholder: "Document juridique",
	},
}

// BuildContext 把检索结果渲染为提示词上下文
// 空内容的分块整体跳过，编号只对实际渲染的块计数
func BuildContext(chunks []retrieval.RetrievedChunk, language string) string {
	labels, ok := contextLabels[language]
	if !ok {
		labels = contextLabels[DefaultLanguage]
	}

	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}

		fields := []string{fmt.Sprintf("[%d] %s", len(blocks)+1, documentTitle(chunk.Document, language, labels.Placeholder))}
		if chunk.Document != nil && chunk.Document.OfficialRef != "" {
			fields = append(fields, fmt.Sprintf("%s: %s", labels.OfficialRef, chunk.Document.OfficialRef))
		}
		if article := articleNumber(chunk); article != "" {
			fields = append(fields, fmt.Sprintf("%s: %s", labels.Article, article))
		}
		if chunk.DocumentID != "" {
			fields = append(fields, fmt.Sprintf("%s: %s", labels.Document, chunk.DocumentID))
		}
		if chunk.Score > 0 {
			fields = append(fields, fmt.Sprintf("%s: %.2f", labels.Similarity, chunk.Score))
		}

		blocks = append(blocks, strings.Join(fields, " | ")+"\n"+chunk.Content)
	}

	return strings.Join(blocks, "\n\n")
}

// BuildCitations 从检索结果提取去重后的引用列表
// 去重键为父文献ID，同一文献取首个分块的信息；无文献ID的分块不可引用
func BuildCitations(chunks []retrieval.RetrievedChunk, language, defaultURL string) []Citation {
	labels, ok := contextLabels[language]
	if !ok {
		labels = contextLabels[DefaultLanguage]
	}

	citations := make([]Citation, 0, len(chunks))
	cited := make(map[string]bool, len(chunks))
	for _, chunk := range chunks {
		if chunk.DocumentID == "" || cited[chunk.DocumentID] {
			continue
		}
		cited[chunk.DocumentID] = true

		citations = append(citations, Citation{
			Source:    documentTitle(chunk.Document, language, labels.Placeholder),
			Article:   articleNumber(chunk),
			Reference: officialReference(chunk),
			URL:       citationURL(chunk, defaultURL),
		})
	}
	return citations
}

// documentTitle 标题回退：目标语言标题 → 另一语言标题 → 占位符
func documentTitle(doc *models.LegalDocument, language, placeholder string) string {
	if doc == nil {
		return placeholder
	}
	if language == "ar" {
		if doc.TitleAr != "" {
			return doc.TitleAr
		}
		if doc.Title != "" {
			return doc.Title
		}
	} else {
		if doc.Title != "" {
			return doc.Title
		}
		if doc.TitleAr != "" {
			return doc.TitleAr
		}
	}
	return placeholder
}

func articleNumber(chunk retrieval.RetrievedChunk) string {
	if chunk.ArticleNumber != "" {
		return chunk.ArticleNumber
	}
	if v, ok := chunk.Metadata["articleNumber"].(string); ok {
		return v
	}
	return ""
}

func officialReference(chunk retrieval.RetrievedChunk) string {
	if chunk.Document != nil && chunk.Document.OfficialRef != "" {
		return chunk.Document.OfficialRef
	}
	if v, ok := chunk.Metadata["officialRef"].(string); ok {
		return v
	}
	return ""
}

// citationURL 链接回退：分块元数据 → 文献元数据 → 默认官方网站
func citationURL(chunk retrieval.RetrievedChunk, defaultURL string) string {
	if v, ok := chunk.Metadata["url"].(string); ok && v != "" {
		return v
	}
	if chunk.Document != nil && chunk.Document.Metadata != "" {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(chunk.Document.Metadata), &meta); err == nil {
			if v, ok := meta["url"].(string); ok && v != "" {
				return v
			}
		}
	}
	return defaultURL
}
