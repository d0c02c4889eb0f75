package provider

import (
	"sort"
	"strings"
)

// Reserved parameter names that never participate in signing
const (
	ParamSign     = "sign"
	ParamSignType = "sign_type"
)

// SignContent builds the canonical signing string for a parameter map:
// reserved keys (sign, sign_type) and empty values are dropped, the remaining
// keys are sorted in ascending byte order and joined as key=value pairs with
// "&". No URL-encoding is applied. Both the signing side and the verifying
// side recompute this string, so it is bit-for-bit reproducible regardless of
// map iteration order.
//
// Only the empty string counts as empty here; a literal "0" is a meaningful
// value and is kept.
func SignContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == ParamSign || k == ParamSignType || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
