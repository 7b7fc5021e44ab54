// Package test holds fakes shared by the specs of several packages.
package test

import (
	"fmt"
	"os"
	"path/filepath"
)

// Shell bodies for scripted workers. A worker is invoked as
// `<script> -x <base> -n <term>`, so the base is $2 and the term is $4.
const (
	// ScriptEchoTerm writes the term index as its value.
	ScriptEchoTerm = `printf '%s' "$4"`
	// ScriptGarbage writes a payload that is not a number.
	ScriptGarbage = `printf 'abc'`
	// ScriptSilent exits without writing.
	ScriptSilent = `exit 0`
	// ScriptCrash writes a value and exits with status 3.
	ScriptCrash = `printf '1.0'; exit 3`
	// ScriptSlow sleeps before writing 1.
	ScriptSlow = `sleep 0.2; printf '1'`
	// ScriptChatty writes a value in several small pieces.
	ScriptChatty = `printf '0.'; sleep 0.05; printf '12345'; sleep 0.05; printf '6789012'`
	// ScriptLinger writes 1 on every term. Term 0 closes its output right
	// away and exits a second later; the others write after a short sleep.
	ScriptLinger = `if [ "$4" = 0 ]; then printf '1'; exec 1>&-; sleep 1; else sleep 0.2; printf '1'; fi`
)

// WriteWorkerScript writes an executable /bin/sh script with body to dir and
// returns its path.
func WriteWorkerScript(dir, name, body string) (string, error) {
	path := filepath.Join(dir, name)
	content := fmt.Sprintf("#!/bin/sh\n%s\n", body)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return "", fmt.Errorf("writing worker script %s: %w", name, err)
	}
	return path, nil
}
