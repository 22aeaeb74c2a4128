package ai

import "strings"

var templateTokens = []string{
	"<|im_start|>",
	"<|im_end|>",
	"<|eot_id|>",
	"<|begin_of_text|>",
	"<|start_header_id|>assistant<|end_header_id|>",
}

// CleanResponse strips chat template tokens the model leaks and any leading command
// marker so that the bot never triggers its own commands. Newlines are kept since
// Discord renders them.
func CleanResponse(resp string) string {
	for _, tok := range templateTokens {
		resp = strings.ReplaceAll(resp, tok, "")
	}
	resp = strings.TrimSpace(resp)
	resp = strings.TrimLeft(resp, "!/") // remove any leading ! or / so that we dont trigger commands
	return strings.TrimSpace(resp)
}
