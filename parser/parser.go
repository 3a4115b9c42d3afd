package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-steam-search/models"
)

// ErrUnsuccessful is returned by DecodeDetail when the store does not report
// success for the requested application.
var ErrUnsuccessful = errors.New("store reported no data")

type catalogPayload struct {
	AppList *struct {
		Apps *[]catalogApp `json:"apps"`
	} `json:"applist"`
}

type catalogApp struct {
	AppID *uint64 `json:"appid"`
	Name  *string `json:"name"`
}

// detailPayload shadows AppDetail.Name so a missing name can be told apart
// from an empty one.
type detailPayload struct {
	models.AppDetail
	Name *string `json:"name"`
}

// DecodeCatalog decodes an app list response into entries, in source order.
func DecodeCatalog(body []byte) ([]models.CatalogEntry, error) {
	var payload catalogPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if payload.AppList == nil {
		return nil, fmt.Errorf("catalog missing applist")
	}
	if payload.AppList.Apps == nil {
		return nil, fmt.Errorf("catalog missing applist.apps")
	}

	apps := *payload.AppList.Apps
	entries := make([]models.CatalogEntry, 0, len(apps))
	for i, app := range apps {
		if app.AppID == nil {
			return nil, fmt.Errorf("catalog entry %d missing appid", i)
		}
		if app.Name == nil {
			return nil, fmt.Errorf("catalog entry %d (appid %d) missing name", i, *app.AppID)
		}
		entries = append(entries, models.CatalogEntry{AppID: *app.AppID, Name: *app.Name})
	}
	return entries, nil
}

// DecodeDetail decodes an appdetails response for appID. Any well-formed
// response that does not carry success=true under the app's key yields
// ErrUnsuccessful.
func DecodeDetail(appID uint64, body []byte) (*models.AppDetail, error) {
	envelopes, err := decodeObject(body)
	if err != nil {
		return nil, fmt.Errorf("decode detail envelope: %w", err)
	}
	if envelopes == nil {
		return nil, ErrUnsuccessful
	}

	entry, err := decodeObject(envelopes[strconv.FormatUint(appID, 10)])
	if err != nil {
		return nil, fmt.Errorf("decode detail entry: %w", err)
	}
	if entry == nil || !bytes.Equal(bytes.TrimSpace(entry["success"]), []byte("true")) {
		return nil, ErrUnsuccessful
	}

	data := bytes.TrimSpace(entry["data"])
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("detail for %d missing data", appID)
	}

	var payload detailPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode detail data: %w", err)
	}
	if payload.Name == nil {
		return nil, fmt.Errorf("detail for %d missing name", appID)
	}

	detail := payload.AppDetail
	detail.Name = *payload.Name
	return &detail, nil
}

// decodeObject returns raw members of a JSON object. Well-formed JSON that is
// not an object yields a nil map and no error.
func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// ValidateDetail ensures a resolved record is usable for export.
func ValidateDetail(d *models.AppDetail) error {
	if d == nil {
		return fmt.Errorf("detail is nil")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("detail missing name")
	}
	return nil
}

// NormalizeName trims surrounding whitespace from a catalog or store name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// PlainText renders a store HTML fragment as a single line of text.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, h1, h2, h3, h4, div").AppendHtml(" ")
	return strings.Join(strings.Fields(doc.Text()), " ")
}
