package llmcatalog

// Capability names a feature inferred from a provider's signals.
type Capability string

const (
	CapChat             Capability = "chat"
	CapToolCalling      Capability = "tool_calling"
	CapReasoning        Capability = "reasoning"
	CapStructuredOutput Capability = "structured_output"
	CapAttachments      Capability = "attachments"
	CapVision           Capability = "vision"
	CapEmbeddings       Capability = "embeddings"
	CapTextGeneration   Capability = "text_generation"
	CapImageGeneration  Capability = "image_generation"
	CapSpeechToText     Capability = "speech_to_text"
	CapTextToSpeech     Capability = "text_to_speech"
)

// Modality is an input or output medium a model handles.
type Modality string

const (
	ModalityText      Modality = "text"
	ModalityImage     Modality = "image"
	ModalityAudio     Modality = "audio"
	ModalityVideo     Modality = "video"
	ModalityFile      Modality = "file"
	ModalityPDF       Modality = "pdf"
	ModalityEmbedding Modality = "embedding"
)

// signal maps the presence of a provider-specific marker to a capability.
// The keys are checked in order; the first present one decides.
type signal struct {
	keys       []string
	capability Capability
}

// hasString reports whether list contains s.
func hasString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
