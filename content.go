// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package qrsheet

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ContentType selects one of the QR payload grammars.
type ContentType int

const (
	ContentURL ContentType = iota
	ContentText
	ContentEmail
	ContentPhone
	ContentSMS
	ContentWiFi
	ContentVCard
)

var contentTypeNames = map[ContentType]string{
	ContentURL:   "url",
	ContentText:  "text",
	ContentEmail: "email",
	ContentPhone: "phone",
	ContentSMS:   "sms",
	ContentWiFi:  "wifi",
	ContentVCard: "vcard",
}

// ContentTypes lists every content type in presentation order.
var ContentTypes = []ContentType{ContentURL, ContentText, ContentEmail, ContentPhone, ContentSMS, ContentWiFi, ContentVCard}

func (t ContentType) String() string { return enumString(contentTypeNames, t) }

func (t ContentType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ContentType) UnmarshalText(b []byte) error {
	return enumParse(contentTypeNames, t, b, "content type")
}

// Encryption is the WiFi authentication scheme.
type Encryption int

const (
	EncryptionWPA Encryption = iota
	EncryptionWEP
	EncryptionNone
)

var encryptionNames = map[Encryption]string{
	EncryptionWPA:  "WPA",
	EncryptionWEP:  "WEP",
	EncryptionNone: "nopass",
}

func (e Encryption) String() string { return enumString(encryptionNames, e) }

func (e Encryption) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Encryption) UnmarshalText(b []byte) error {
	return enumParse(encryptionNames, e, b, "encryption")
}

// Content is a typed QR payload. The set of implementations is closed.
type Content interface {
	// Encode returns the string a QR reader expects for this content.
	Encode() string

	Type() ContentType
}

// URL content gets an https:// scheme unless it already has http(s).
type URL struct {
	Value string `json:"value"`
}

type Text struct {
	Value string `json:"value"`
}

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Phone struct {
	Number string `json:"number"`
}

type SMS struct {
	Number string `json:"number"`
	Body   string `json:"body"`
}

type WiFi struct {
	SSID       string     `json:"ssid"`
	Password   string     `json:"password"`
	Encryption Encryption `json:"encryption"`
	Hidden     bool       `json:"hidden"`
}

type VCard struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Org       string `json:"org"`
	URL       string `json:"url"`
	Title     string `json:"title"`
}

var schemeRE = regexp.MustCompile(`(?i)^https?://`)

func (u URL) Encode() string {
	v := strings.TrimSpace(u.Value)
	if v != "" && !schemeRE.MatchString(v) {
		return "https://" + v
	}
	return v
}

func (t Text) Encode() string { return t.Value }

func (e Email) Encode() string {
	var params []string
	if e.Subject != "" {
		params = append(params, "subject="+escapeComponent(e.Subject))
	}
	if e.Body != "" {
		params = append(params, "body="+escapeComponent(e.Body))
	}
	if len(params) == 0 {
		return "mailto:" + e.To
	}
	return "mailto:" + e.To + "?" + strings.Join(params, "&")
}

func (p Phone) Encode() string { return "tel:" + p.Number }

func (s SMS) Encode() string {
	if s.Body == "" {
		return "sms:" + s.Number
	}
	return "sms:" + s.Number + "?body=" + escapeComponent(s.Body)
}

func (w WiFi) Encode() string {
	var hidden string
	if w.Hidden {
		hidden = "H:true"
	}
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;%s;", w.Encryption, w.SSID, w.Password, hidden)
}

func (v VCard) Encode() string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + v.LastName + ";" + v.FirstName + ";;;",
		"FN:" + v.FirstName + " " + v.LastName,
	}
	for _, f := range []struct{ key, val string }{
		{"TEL", v.Phone},
		{"EMAIL", v.Email},
		{"ORG", v.Org},
		{"TITLE", v.Title},
		{"URL", v.URL},
	} {
		if f.val != "" {
			lines = append(lines, f.key+":"+f.val)
		}
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

func (URL) Type() ContentType   { return ContentURL }
func (Text) Type() ContentType  { return ContentText }
func (Email) Type() ContentType { return ContentEmail }
func (Phone) Type() ContentType { return ContentPhone }
func (SMS) Type() ContentType   { return ContentSMS }
func (WiFi) Type() ContentType  { return ContentWiFi }
func (VCard) Type() ContentType { return ContentVCard }

// escapeComponent escapes s the way URI components are escaped in mailto:
// and sms: links: spaces become %20 and the marks !'()* stay literal.
func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ContentConfig is the stored form of a QR payload: the selected type plus
// the fields of every type, so switching types keeps earlier input.
type ContentConfig struct {
	Type  ContentType `json:"type"`
	Value string      `json:"value"` // url and text
	WiFi  WiFi        `json:"wifi"`
	VCard VCard       `json:"vcard"`
	Email Email       `json:"email"`
	SMS   SMS         `json:"sms"`
	Phone string      `json:"phone"`
}

// Content returns the variant selected by c.Type.
func (c ContentConfig) Content() Content {
	switch c.Type {
	case ContentURL:
		return URL{Value: c.Value}
	case ContentText:
		return Text{Value: c.Value}
	case ContentEmail:
		return c.Email
	case ContentPhone:
		return Phone{Number: c.Phone}
	case ContentSMS:
		return c.SMS
	case ContentWiFi:
		return c.WiFi
	case ContentVCard:
		return c.VCard
	}
	panic(fmt.Sprintf("BUG: unhandled content type %d", int(c.Type)))
}

// EncodeContent returns the QR payload for c.
func EncodeContent(c ContentConfig) string { return c.Content().Encode() }

// SampleContent returns c with the example data for content type t filled
// in, keeping the fields of other types.
func SampleContent(c ContentConfig, t ContentType) ContentConfig {
	c.Type = t
	switch t {
	case ContentURL:
		c.Value = "https://www.example.com/my-page"
	case ContentText:
		c.Value = "Hello! This is a sample QR code text."
	case ContentEmail:
		c.Email = Email{
			To:      "contact@example.com",
			Subject: "Hello from QR",
			Body:    "I scanned your QR code!",
		}
	case ContentPhone:
		c.Phone = "+1 (555) 123-4567"
	case ContentSMS:
		c.SMS = SMS{
			Number: "+1 (555) 987-6543",
			Body:   "Hi! I scanned your QR code.",
		}
	case ContentWiFi:
		c.WiFi = WiFi{
			SSID:       "MyNetwork",
			Password:   "SecurePass123",
			Encryption: EncryptionWPA,
		}
	case ContentVCard:
		c.VCard = VCard{
			FirstName: "John",
			LastName:  "Doe",
			Phone:     "+1 (555) 000-1234",
			Email:     "john.doe@example.com",
			Org:       "Acme Corp",
			URL:       "https://johndoe.example.com",
			Title:     "Software Engineer",
		}
	default:
		panic(fmt.Sprintf("BUG: unhandled content type %d", int(t)))
	}
	return c
}
