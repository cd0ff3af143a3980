package page

import (
	"fmt"
	"net/url"

	"github.com/tkrehbiel/activitynode/server/activity"
)

// MetaData contains server information typically used in templates
type MetaData struct {
	URL      string // full server URL with scheme, host, port
	Scheme   string // http or https
	HostName string // server hostname
	Port     int    // server port
}

// These functions set the base paths for endpoints

// WebFingerAccount gets a webfinger user account name
func (m MetaData) WebFingerAccount(name string) string {
	return fmt.Sprintf("acct:%s@%s", name, m.HostName)
}

// ActorURL gets an ActivtyPub Actor ID and endpoint URL
func (m MetaData) ActorURL(name string) string {
	s, _ := url.JoinPath(m.URL, "a", name)
	return s
}

// ProfileURL gets an HTML profile page for a user name
func (m MetaData) ProfileURL(name string) string {
	s, _ := url.JoinPath(m.URL, "profile", name)
	return s
}

func (m MetaData) NewUserMetaData(name string) UserMetaData {
	return UserMetaData{
		MetaData:       m,
		UserName:       name,
		UserID:         m.ActorURL(name),
		UserProfileURL: m.ProfileURL(name),
		UserType:       activity.PersonType,
	}
}

func NewMetaData(u *url.URL) MetaData {
	return MetaData{
		URL:      u.String(),
		Scheme:   u.Scheme,
		HostName: u.Hostname(),
	}
}

// UserMetaData contains user information typically used in templates
type UserMetaData struct {
	MetaData
	UserName        string // Plain undecorated username
	UserID          string // ActivityPub user ID (an URL for application/json+activity)
	UserProfileURL  string // HTML user profile page (an URL)
	UserDisplayName string
	UserType        string // ActivityPub Actor type (Person, Service, etc.)
}

func (m UserMetaData) InboxURL() string {
	s, _ := url.JoinPath(m.UserID, "inbox")
	return s
}

func (m UserMetaData) OutboxURL() string {
	s, _ := url.JoinPath(m.UserID, "outbox")
	return s
}

// Actor builds the ActivityPub actor document for the user
func (m UserMetaData) Actor() activity.Actor {
	return activity.Actor{
		Entity: activity.Entity{
			Context: activity.Context,
			ID:      m.UserID,
			Type:    m.UserType,
			Name:    m.UserDisplayName,
		},
		Inbox:             m.InboxURL(),
		Outbox:            m.OutboxURL(),
		PreferredUsername: m.UserName,
	}
}

// WebFinger builds the JRD document that resolves the user's account to the actor
func (m UserMetaData) WebFinger() activity.WebFinger {
	return activity.WebFinger{
		Subject: m.WebFingerAccount(m.UserName),
		Aliases: []string{m.UserID, m.UserProfileURL},
		Links: []activity.WebFingerLink{
			{Rel: "self", Type: activity.ContentType, Href: m.UserID},
			{Rel: "http://webfinger.net/rel/profile-page", Type: "text/html", Href: m.UserProfileURL},
		},
	}
}
