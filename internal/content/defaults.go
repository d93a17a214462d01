package content

import "encoding/json"

// Bundled default documents. Reset restores these; first Get falls back to
// them when nothing was persisted yet.
var defaultDocuments = map[string]map[string]json.RawMessage{
	DomainHomepage: {
		"hero": json.RawMessage(`{
			"title": "Rooted in Tradition, Growing with You",
			"subtitle": "Live online classes in Sanskrit, music and Vedic studies",
			"ctaText": "Explore Courses",
			"ctaLink": "/courses"
		}`),
		"schools": json.RawMessage(`{
			"heading": "Our Schools",
			"items": [
				{"slug": "sanskrit-school", "title": "Sanskrit School", "description": "From the alphabet to classical literature."},
				{"slug": "music-school", "title": "Music School", "description": "Carnatic vocal and instrumental training."}
			]
		}`),
		"testimonials": json.RawMessage(`{
			"heading": "What Learners Say",
			"items": []
		}`),
		"faq": json.RawMessage(`{
			"heading": "Frequently Asked Questions",
			"items": [
				{"question": "Are classes live or recorded?", "answer": "All classes are live, with recordings shared afterwards."}
			]
		}`),
		"stats": json.RawMessage(`{
			"learners": 0,
			"countries": 0,
			"teachers": 0
		}`),
		"cta": json.RawMessage(`{
			"title": "Start your journey today",
			"buttonText": "Book a free trial",
			"buttonLink": "/trial"
		}`),
	},
	DomainSanskritSchool: {
		"hero": json.RawMessage(`{
			"title": "Sanskrit School",
			"subtitle": "Structured levels from beginner to advanced"
		}`),
		"curriculum": json.RawMessage(`{
			"heading": "Curriculum",
			"levels": []
		}`),
		"teachers": json.RawMessage(`{
			"heading": "Meet the Teachers",
			"items": []
		}`),
		"faq": json.RawMessage(`{
			"heading": "FAQ",
			"items": []
		}`),
	},
}

// defaultDocument builds a fresh version-1 document for the domain, or nil
// when the domain has no bundled default.
func defaultDocument(domain string) *Document {
	sections, ok := defaultDocuments[domain]
	if !ok {
		return nil
	}
	d := &Document{Domain: domain, Version: 1, Sections: make(map[string]json.RawMessage, len(sections))}
	for k, v := range sections {
		raw := make(json.RawMessage, len(v))
		copy(raw, v)
		d.Sections[k] = raw
	}
	return d
}
