package page

// Serving /.well-known/host-meta and /.well-known/nodeinfo

var WellKnownHostMeta = StaticPage{
	Path:        "/.well-known/host-meta",
	Accept:      "*/*",
	ContentType: "application/xrd+xml",
	Template: `
<?xml version="1.0" encoding="UTF-8"?>
<XRD xmlns="http://docs.oasis-open.org/ns/xri/xrd-1.0">
	<Link rel="lrdd" type="application/jrd+json" template="{{ .URL }}/.well-known/webfinger?resource={uri}"/>
</XRD>`,
}

var WellKnownNodeInfo = StaticPage{
	Path:        "/.well-known/nodeinfo",
	Accept:      "*/*",
	ContentType: "application/json",
	Template: `
{
	"links": [
		{
			"rel": "http://nodeinfo.diaspora.software/ns/schema/2.1",
			"href": "{{ .URL }}/nodeinfo/2.1"
		}
	]
}`,
}

var NodeInfo = StaticPage{
	Path:        "/nodeinfo/2.1",
	Accept:      "*/*",
	ContentType: "application/json",
	Template: `
{
	"version": "2.1",
	"software": {
		"name": "activitynode",
		"version": "0.1",
		"repository": "https://github.com/tkrehbiel/activitynode/"
	},
	"protocols": ["activitypub"],
	"services": {"inbound": [], "outbound": ["rss2.0"]},
	"openRegistrations": false,
	"usage": {"users": {}},
	"metadata": {}
}`,
}
