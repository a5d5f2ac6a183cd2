package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyVerdict(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
		want    VerdictOutcome
	}{
		{name: "lgtm", verdict: "LGTM, ship it", want: VerdictApprove},
		{name: "looks good", verdict: "This looks good to me overall.", want: VerdictApprove},
		{name: "approved", verdict: "Approved. The error handling is correct.", want: VerdictApprove},
		{name: "satisfactory", verdict: "The solution is satisfactory.", want: VerdictApprove},
		{name: "mixed case", verdict: "APPROVED", want: VerdictApprove},
		{name: "marker mid sentence", verdict: "After careful reading I find this satisfactory for merging.", want: VerdictApprove},
		{name: "revision request", verdict: "Please handle the nil case in the parser.", want: VerdictRevise},
		{name: "negative judgment", verdict: "This breaks the retry path, needs rework.", want: VerdictRevise},
		{name: "empty verdict", verdict: "", want: VerdictRevise},
		{name: "whitespace only", verdict: "   \n\t", want: VerdictRevise},
		{name: "garbled output", verdict: "{\"unexpected\": true}", want: VerdictRevise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyVerdict(tt.verdict))
		})
	}
}
