// SPDX-License-Identifier: MPL-2.0

package render

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/podenv/podenv/internal/execctx"
)

// Human returns the rendered invocation as one shell-quoted line, prefixed
// with the target's program name. It is meant for display; execution always
// uses the argument vector from Render.
func Human(c *execctx.Context, target Target) (string, error) {
	args, err := Render(c, target)
	if err != nil {
		return "", err
	}
	return JoinArgs(append([]string{target.Program()}, args...)), nil
}

// JoinArgs quotes each argument for bash and joins them with spaces.
func JoinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			// only strings bash cannot represent (e.g. NUL bytes) end up here
			q = strconv.Quote(a)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
