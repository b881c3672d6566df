package llmcatalog

import (
	"strings"
	"time"
)

// pipelineProfile is what a Hugging Face pipeline tag says about a model.
type pipelineProfile struct {
	inputs     []string
	outputs    []string
	capability Capability
}

var huggingFacePipelines = map[string]pipelineProfile{
	"text-generation":              {[]string{"text"}, []string{"text"}, CapTextGeneration},
	"text2text-generation":         {[]string{"text"}, []string{"text"}, CapTextGeneration},
	"image-text-to-text":           {[]string{"text", "image"}, []string{"text"}, CapVision},
	"visual-question-answering":    {[]string{"text", "image"}, []string{"text"}, CapVision},
	"image-to-text":                {[]string{"image"}, []string{"text"}, CapVision},
	"feature-extraction":           {[]string{"text"}, []string{"embedding"}, CapEmbeddings},
	"sentence-similarity":          {[]string{"text"}, []string{"embedding"}, CapEmbeddings},
	"text-to-image":                {[]string{"text"}, []string{"image"}, CapImageGeneration},
	"automatic-speech-recognition": {[]string{"audio"}, []string{"text"}, CapSpeechToText},
	"text-to-speech":               {[]string{"text"}, []string{"audio"}, CapTextToSpeech},
}

// huggingFaceTags is matched by substring against each free-text tag.
var huggingFaceTags = []signal{
	{keys: []string{"conversational"}, capability: CapChat},
	{keys: []string{"function-calling", "tool-use"}, capability: CapToolCalling},
	{keys: []string{"reasoning"}, capability: CapReasoning},
	{keys: []string{"embedding"}, capability: CapEmbeddings},
}

// HuggingFaceSource transforms Hugging Face hub listings, which classify a
// model by pipeline tag and free-text tags rather than explicit flags.
type HuggingFaceSource struct {
	defaults Defaults
}

// NewHuggingFaceSource returns a transformer that fills absent fields from d.
func NewHuggingFaceSource(d Defaults) *HuggingFaceSource {
	return &HuggingFaceSource{defaults: d}
}

// Kind reports KindHuggingFace.
func (s *HuggingFaceSource) Kind() SourceKind { return KindHuggingFace }

// Transform maps one hub listing to a Model. Modalities and capabilities are
// inferred from the pipeline tag and tags.
func (s *HuggingFaceSource) Transform(raw any, providerHint string, now time.Time) Model {
	d := s.defaults
	r := asRecord(raw)

	id := r.text("", "id", "modelId")
	name := r.text("", "name")
	if name == "" && id != "" {
		name = id[strings.LastIndex(id, "/")+1:]
	}
	m, ok := identify(d, id, name, providerHint)
	if !ok {
		return m
	}

	m.ContextWindow = r.count(d.ContextWindow, "context_length", "contextLength", "config.max_position_embeddings")
	m.MaxOutputTokens = r.count(d.MaxOutputTokens, "max_output_tokens", "maxOutputTokens")

	var caps []string
	if profile, ok := huggingFacePipelines[r.text("", "pipeline_tag", "pipelineTag")]; ok {
		m.Modalities = unionStrings(profile.inputs, profile.outputs)
		caps = append(caps, string(profile.capability))
	}
	caps = append(caps, matchTags(r.list("tags"), huggingFaceTags)...)
	m.Capabilities = unionStrings(caps)
	m.SupportsAttachments = d.SupportsAttachments || m.HasModality(ModalityImage)

	m.ReleaseDate = r.text("", "created_at", "createdAt")
	m.LastUpdated = r.text("", "last_modified", "lastModified")
	m.OpenWeights = r.flag(d.OpenWeights, "open_weights", "openWeights")
	m.New = isNew(m.ReleaseDate, now)
	return m
}

func matchTags(tags []string, table []signal) []string {
	var caps []string
	for _, s := range table {
	tagLoop:
		for _, tag := range tags {
			lower := strings.ToLower(tag)
			for _, key := range s.keys {
				if strings.Contains(lower, key) {
					caps = append(caps, string(s.capability))
					break tagLoop
				}
			}
		}
	}
	return caps
}
