package migrate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/photoshare/internal/common"
)

// PhotoRecord is a photo row exported from the relational store.
type PhotoRecord struct {
	ID          Text `json:"id"`
	Filename    Text `json:"filename"`
	Description Text `json:"description"`
	UserID      Text `json:"user_id"`
}

// UserRecord is a user row exported from the relational store.
type UserRecord struct {
	UserID       Text `json:"user_id"`
	Username     Text `json:"username"`
	PasswordHash Text `json:"password_hash"`
}

type usersFile struct {
	Users []UserRecord `json:"Users"`
}

func ReadPhotoRecords(r io.Reader) ([]PhotoRecord, error) {
	var recs []PhotoRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode photo records: %w", err)
	}
	return recs, nil
}

// ReadUserRecords reads a {"Users": [...]} export.
func ReadUserRecords(r io.Reader) ([]UserRecord, error) {
	var f usersFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode user records: %w", err)
	}
	return f.Users, nil
}

// ConvertPhotos builds put requests for photo records. Ids are numeric
// attributes unless stringIDs is set, empty descriptions become
// common.MissingDescription, and a lower-cased copy of the description is
// stored for case-insensitive search.
func ConvertPhotos(recs []PhotoRecord, stringIDs bool) ([]WriteRequest, error) {
	id := N
	if stringIDs {
		id = S
	}

	out := make([]WriteRequest, 0, len(recs))
	for i, r := range recs {
		if r.ID == "" || r.Filename == "" {
			return nil, fmt.Errorf("record %d: id and filename are required", i)
		}
		if !stringIDs && (!isNumber(string(r.ID)) || !isNumber(string(r.UserID))) {
			return nil, fmt.Errorf("record %d: id and user_id must be numeric (use string ids otherwise)", i)
		}

		desc := string(r.Description)
		if desc == "" {
			desc = common.MissingDescription
		}

		out = append(out, WriteRequest{PutRequest: &PutRequest{Item: Item{
			"id":             id(string(r.ID)),
			"filename":       S(string(r.Filename)),
			"description":    S(desc),
			"description_lc": S(strings.ToLower(desc)),
			"user_id":        id(string(r.UserID)),
		}}})
	}
	return out, nil
}

// ConvertUsers builds put requests for user records; all attributes are
// strings.
func ConvertUsers(recs []UserRecord) ([]WriteRequest, error) {
	out := make([]WriteRequest, 0, len(recs))
	for i, r := range recs {
		if r.UserID == "" || r.Username == "" || r.PasswordHash == "" {
			return nil, fmt.Errorf("user %d: user_id, username and password_hash are required", i)
		}
		out = append(out, WriteRequest{PutRequest: &PutRequest{Item: Item{
			"user_id":       S(string(r.UserID)),
			"username":      S(string(r.Username)),
			"password_hash": S(string(r.PasswordHash)),
		}}})
	}
	return out, nil
}
