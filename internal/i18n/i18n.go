package i18n

import (
	"net/http"
)

type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
)

// GetLanguageFromRequest extracts language from request (query param or cookie)
func GetLanguageFromRequest(r *http.Request) Language {
	if lang, ok := parse(r.URL.Query().Get("lang")); ok {
		return lang
	}

	if cookie, err := r.Cookie("lang"); err == nil {
		if lang, ok := parse(cookie.Value); ok {
			return lang
		}
	}

	return English
}

func parse(s string) (Language, bool) {
	switch Language(s) {
	case English, Hindi:
		return Language(s), true
	}
	return "", false
}

var labels = map[string]map[Language]string{
	"events":            {English: "Events", Hindi: "कार्यक्रम"},
	"gallery":           {English: "Gallery", Hindi: "गैलरी"},
	"search":            {English: "Search", Hindi: "खोजें"},
	"new_event":         {English: "New event", Hindi: "नया कार्यक्रम"},
	"edit_event":        {English: "Update Event", Hindi: "कार्यक्रम बदलें"},
	"add_event":         {English: "Add New Event", Hindi: "नया कार्यक्रम जोड़ें"},
	"no_events":         {English: "No events found", Hindi: "कोई कार्यक्रम नहीं मिला"},
	"rsvp":              {English: "RSVP", Hindi: "आरएसवीपी"},
	"going":             {English: "Going", Hindi: "आ रहे हैं"},
	"not_going":         {English: "Not going", Hindi: "नहीं आ रहे"},
	"submit":            {English: "Submit", Hindi: "भेजें"},
	"save":              {English: "Save", Hindi: "सहेजें"},
	"delete":            {English: "Delete", Hindi: "हटाएँ"},
	"edit":              {English: "Edit", Hindi: "बदलें"},
	"loading":           {English: "Loading...", Hindi: "लोड हो रहा है..."},
	"confirmations":     {English: "Confirmations", Hindi: "पुष्टि संदेश"},
	"resend":            {English: "Resend", Hindi: "फिर भेजें"},
	"upload_images":     {English: "Drop images to upload", Hindi: "अपलोड के लिए चित्र छोड़ें"},
	"face_search":       {English: "Drop one photo to search faces", Hindi: "चेहरा खोजने के लिए एक फोटो छोड़ें"},
	"search_results":    {English: "Search results", Hindi: "खोज परिणाम"},
	"not_specified":     {English: "Not specified", Hindi: "निर्दिष्ट नहीं"},
	"rsvps":             {English: "RSVPs", Hindi: "आरएसवीपी सूची"},
	"logout":            {English: "Logout", Hindi: "लॉग आउट"},
	"download_csv":      {English: "Download CSV", Hindi: "CSV डाउनलोड करें"},
	"no_confirmations":  {English: "No failed confirmations", Hindi: "कोई विफल पुष्टि नहीं"},
	"location_unmapped": {English: "Location could not be mapped", Hindi: "स्थान मानचित्र पर नहीं मिला"},
}

// T returns the label for key in lang, falling back to English and then to the key.
func T(lang Language, key string) string {
	l, ok := labels[key]
	if !ok {
		return key
	}
	if s, ok := l[lang]; ok {
		return s
	}
	return l[English]
}
