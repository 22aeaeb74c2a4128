package ai

import "testing"

func Test_CleanResponse(t *testing.T) {
	tests := []struct {
		name string
		resp string
		want string
	}{
		{
			name: "keeps newlines",
			resp: "Hello\nWorld",
			want: "Hello\nWorld",
		},
		{
			name: "strips template tokens",
			resp: "<|im_start|> \nSenku: ten billion percent<|im_end|>",
			want: "Senku: ten billion percent",
		},
		{
			name: "strips llama end of turn",
			resp: "Water boils at 100°C.<|eot_id|>",
			want: "Water boils at 100°C.",
		},
		{
			name: "strips command prefix",
			resp: "  !askai loop",
			want: "askai loop",
		},
		{
			name: "strips slash command",
			resp: "//help",
			want: "help",
		},
		{
			name: "empty",
			resp: "<|im_end|>",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanResponse(tt.resp); got != tt.want {
				t.Errorf("CleanResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}
