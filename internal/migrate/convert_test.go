package migrate

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportedPhotos = `[
	{"id": "36", "filename": "blastoise.gif", "description": "BIGIG", "user_id": "1"},
	{"id": "37", "filename": "skeptical_cat.jpg", "description": "", "user_id": "3"},
	{"id": 38, "filename": "minesweeper_70.png", "description": null, "user_id": 3}
]`

func TestReadAndConvertPhotos(t *testing.T) {
	recs, err := ReadPhotoRecords(strings.NewReader(exportedPhotos))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, Text("38"), recs[2].ID)

	reqs, err := ConvertPhotos(recs, false)
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	first := reqs[0].PutRequest.Item
	assert.Equal(t, N("36"), first["id"])
	assert.Equal(t, N("1"), first["user_id"])
	assert.Equal(t, S("blastoise.gif"), first["filename"])
	assert.Equal(t, S("BIGIG"), first["description"])
	assert.Equal(t, S("bigig"), first["description_lc"])

	assert.Equal(t, S(common.MissingDescription), reqs[1].PutRequest.Item["description"])
	assert.Equal(t, S(common.MissingDescription), reqs[2].PutRequest.Item["description"])
	assert.Equal(t, N("38"), reqs[2].PutRequest.Item["id"])
}

func TestConvertPhotos_StringIDs(t *testing.T) {
	reqs, err := ConvertPhotos([]PhotoRecord{{ID: "abc", Filename: "a.png", UserID: "u-1"}}, true)
	require.NoError(t, err)
	assert.Equal(t, S("abc"), reqs[0].PutRequest.Item["id"])
	assert.Equal(t, S("u-1"), reqs[0].PutRequest.Item["user_id"])
}

func TestConvertPhotos_Rejects(t *testing.T) {
	_, err := ConvertPhotos([]PhotoRecord{{ID: "abc", Filename: "a.png", UserID: "1"}}, false)
	assert.ErrorContains(t, err, "numeric")

	_, err = ConvertPhotos([]PhotoRecord{{ID: "1", UserID: "1"}}, false)
	assert.ErrorContains(t, err, "required")
}

func TestIsNumber(t *testing.T) {
	for _, v := range []string{"36", "-1.5", "1e3", "2.5E-4", "0.25"} {
		assert.True(t, isNumber(v), v)
	}
	for _, v := range []string{"", "NaN", "Inf", "-Infinity", "0x1p3", "1_000", " 1", "1.2.3", "7.", "e5", "+-1"} {
		assert.False(t, isNumber(v), v)
	}

	_, err := ConvertPhotos([]PhotoRecord{{ID: "NaN", Filename: "a.png", UserID: "1"}}, false)
	assert.ErrorContains(t, err, "numeric")
}

func TestConvertUsers(t *testing.T) {
	recs, err := ReadUserRecords(strings.NewReader(`{"Users": [
		{"user_id": "1", "username": "alice", "password_hash": "pbkdf2:sha256:1000$salt$abc"}
	]}`))
	require.NoError(t, err)

	reqs, err := ConvertUsers(recs)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, Item{
		"user_id":       S("1"),
		"username":      S("alice"),
		"password_hash": S("pbkdf2:sha256:1000$salt$abc"),
	}, reqs[0].PutRequest.Item)

	_, err = ConvertUsers([]UserRecord{{UserID: "2", Username: "bob"}})
	assert.Error(t, err)
}

func TestText_RejectsObjects(t *testing.T) {
	var v Text
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &v))
}

func TestDocument_Format(t *testing.T) {
	reqs, err := ConvertPhotos([]PhotoRecord{{ID: "36", Filename: "a.gif", Description: "x", UserID: "1"}}, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, Document{"Images": reqs}))

	var raw map[string][]map[string]map[string]map[string]map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	item := raw["Images"][0]["PutRequest"]["Item"]
	assert.Equal(t, map[string]string{"N": "36"}, item["id"])
	assert.Equal(t, map[string]string{"S": "a.gif"}, item["filename"])

	doc, err := ReadDocument(&buf)
	require.NoError(t, err)
	table, got, err := doc.Table()
	require.NoError(t, err)
	assert.Equal(t, "Images", table)
	assert.Equal(t, reqs, got)
}

func TestDocument_TableRequiresSingleTable(t *testing.T) {
	_, _, err := Document{"A": nil, "B": nil}.Table()
	assert.ErrorContains(t, err, "exactly one table")

	_, _, err = Document{}.Table()
	assert.Error(t, err)
}
