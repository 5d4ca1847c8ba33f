// Package domain holds the wire shapes shared with the identity provider
// backend. Field names and JSON tags mirror the backend's objects; the
// console never persists these itself.
package domain

import "strings"

// Application is an app registered with the identity provider. Identified
// by (Owner, Name), stable within the owner namespace.
type Application struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	CreatedTime string `json:"createdTime"`

	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo"`
	HomepageURL  string `json:"homepageUrl"`
	Description  string `json:"description"`
	Organization string `json:"organization"`

	ClientID     string   `json:"clientId"`
	RedirectURIs []string `json:"redirectUris"`
	SignupURL    string   `json:"signupUrl"`
	SigninURL    string   `json:"signinUrl"`

	EnablePassword bool `json:"enablePassword"`
	EnableSignUp   bool `json:"enableSignUp"`

	SignupItems []SignupItem   `json:"signupItems"`
	Providers   []ProviderItem `json:"providers"`
}

// SignupItem is one configurable signup field of an application.
type SignupItem struct {
	Name     string `json:"name"`
	Visible  bool   `json:"visible"`
	Required bool   `json:"required"`
	Prompted bool   `json:"prompted"`
	Rule     string `json:"rule"`
}

// ProviderItem binds an application to one identity/contact method.
// Prompted means the user must answer it before completing login.
type ProviderItem struct {
	Name      string    `json:"name"`
	CanSignUp bool      `json:"canSignUp"`
	CanSignIn bool      `json:"canSignIn"`
	CanUnlink bool      `json:"canUnlink"`
	Prompted  bool      `json:"prompted"`
	Rule      string    `json:"rule"`
	Provider  *Provider `json:"provider"`
}

// Provider is an identity-method definition (email, phone, or a named
// external IdP such as GitHub).
type Provider struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

// Key returns the canonical lower-cased lookup key of the provider type,
// used to find the matching user field.
func (p *Provider) Key() string {
	return strings.ToLower(p.Type)
}

// IsAffiliationPrompted reports whether the application requires the
// affiliation field to be answered on the prompt page.
func (a *Application) IsAffiliationPrompted() bool {
	for _, item := range a.SignupItems {
		if item.Name == "Affiliation" && item.Prompted {
			return true
		}
	}
	return false
}

// PromptedProviderItems returns the provider items flagged as prompted,
// in configuration order.
func (a *Application) PromptedProviderItems() []ProviderItem {
	var items []ProviderItem
	for _, item := range a.Providers {
		if item.Prompted {
			items = append(items, item)
		}
	}
	return items
}

// HasPromptPage reports whether the application has at least one prompt
// requirement. Reaching the prompt page for an application without any is
// an invalid navigation.
func (a *Application) HasPromptPage() bool {
	return a.IsAffiliationPrompted() || len(a.PromptedProviderItems()) > 0
}
