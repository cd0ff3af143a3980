package activity

// WebFingerLink is one link of a JRD document
type WebFingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
	Href string `json:"href,omitempty"`
}

// WebFinger is a JSON Resource Descriptor as served by /.well-known/webfinger
type WebFinger struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases,omitempty"`
	Links   []WebFingerLink `json:"links,omitempty"`
}

// Validate checks a document built in code against the same rules as received input.
func (w WebFinger) Validate() error {
	v, err := Decode(w)
	if err != nil {
		return err
	}
	_, err = ParseWebFinger(v)
	return err
}

func (c *checker) webFingerLink(m map[string]any, path Path) WebFingerLink {
	var l WebFingerLink
	l.Rel = c.str(m, path, "rel", true, textRule)
	l.Type = c.str(m, path, "type", false, textRule)
	l.Href = c.str(m, path, "href", false, urlRule)
	return l
}

func (c *checker) webFinger(m map[string]any, path Path) WebFinger {
	var w WebFinger
	w.Subject = c.str(m, path, "subject", true, textRule)
	w.Aliases = c.urls(m, path, "aliases")

	raw, ok := m["links"]
	if !ok {
		return w
	}
	p := path.Key("links")
	list, ok := raw.([]any)
	if !ok {
		c.fail(p, ReasonType, "expected array, got %s", typeName(raw))
		return w
	}
	for i, elem := range list {
		lp := p.Index(i)
		if lm, ok := c.object(lp, elem); ok {
			w.Links = append(w.Links, c.webFingerLink(lm, lp))
		}
	}
	return w
}

func ParseWebFingerLink(v any) (WebFingerLink, error) {
	c := &checker{}
	m, ok := c.object(nil, v)
	if !ok {
		return WebFingerLink{}, c.issues.err()
	}
	l := c.webFingerLink(m, nil)
	if err := c.issues.err(); err != nil {
		return WebFingerLink{}, err
	}
	return l, nil
}

func ParseWebFinger(v any) (WebFinger, error) {
	c := &checker{}
	m, ok := c.object(nil, v)
	if !ok {
		return WebFinger{}, c.issues.err()
	}
	w := c.webFinger(m, nil)
	if err := c.issues.err(); err != nil {
		return WebFinger{}, err
	}
	return w, nil
}
