package points

import (
	"encoding/json"

	"github.com/codeready-toolchain/tarsy-metalearn/internal/jsonutil"
)

type usedIDsResponse struct {
	UsedIDs []string `json:"used_ids"`
}

// parseUsedIDs extracts the used_ids array from an LLM classifier
// response, tolerating surrounding prose. A malformed or absent response
// yields no matches rather than an error — usage classification is an
// enrichment on top of the heuristic layer, never a hard requirement.
func parseUsedIDs(text string) []string {
	raw, ok := jsonutil.ExtractJSON(text)
	if !ok {
		return nil
	}
	var resp usedIDsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return resp.UsedIDs
}
