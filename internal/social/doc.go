// Package social recognizes links to social media sites.
//
// The link scanner uses Classify to keep social links out of its internal
// and external sets. Matching is a plain substring test against the host, so
// a denylist entry of "facebook.com" also catches "m.facebook.com" and
// "notfacebook.com". The report writers use Group to list what was excluded,
// together with the profile handle when one can be read from the URL.
package social
