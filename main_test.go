package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prashu2024/form-builder-backend/internal/schema"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Setenv("FORMS_LOG_LEVEL", "error")
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var form schema.Form
	require.NoError(t, json.Unmarshal([]byte(out), &form))
	assert.Equal(t, schema.Default().FieldNames(), form.FieldNames())
}

func TestSchemaCommandUsesSchemaFile(t *testing.T) {
	path := writeFile(t, "form.yaml", `
title: Feedback
description: Tell us
fields:
  - name: comment
    type: textarea
    label: Comment
    required: true
`)
	t.Setenv("FORMS_SCHEMA_FILE", path)

	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Feedback"`)
}

func TestValidateCommand(t *testing.T) {
	valid := writeFile(t, "valid.json", `{
		"fullName": "Ada Lovelace",
		"email": "ada@example.com",
		"age": 36,
		"department": "engineering",
		"skills": ["python"],
		"startDate": "2024-06-01",
		"agreeToTerms": true
	}`)
	out, err := execute(t, "validate", valid)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	invalid := writeFile(t, "invalid.json", `{"age": 15}`)
	out, err = execute(t, "validate", invalid)
	assert.ErrorIs(t, err, errInvalidSubmission)
	assert.Contains(t, out, "age: Minimum value is 18\n")
	assert.Contains(t, out, "fullName: Full Name is required\n")

	_, err = execute(t, "validate", writeFile(t, "broken.json", `{`))
	assert.Error(t, err)
}

func TestSeedCommand(t *testing.T) {
	t.Setenv("FORMS_STORE", "sqlite")
	t.Setenv("FORMS_SQLITE_DSN", ":memory:")

	out, err := execute(t, "seed", "--count", "40", "--workers", "3")
	require.NoError(t, err)
	assert.Equal(t, "inserted 40, rejected 0\n", out)
}
