package model

import (
	"fmt"
	"strings"
)

// TypenamePeer is the discriminator of Peer.
const TypenamePeer = "PeerVO"

// Peer is a backend node the application can synchronize with.
type Peer struct {
	EntityBase
	Host   string
	Port   *int
	UseSSL bool
	Path   string
	Pubkey string
	Label  string
}

// PeerFromObject hydrates a peer.
func PeerFromObject(src Object) *Peer {
	if len(src) == 0 {
		return nil
	}
	p := &Peer{
		EntityBase: readBase(src),
		Host:       src.String("dns"),
		Port:       src.Int("port"),
		Path:       src.String("path"),
		Pubkey:     src.String("pubkey"),
		Label:      src.String("label"),
	}
	if b := src.Bool("useSsl"); b != nil {
		p.UseSSL = *b
	}
	return p
}

// Typename implements Entity.
func (p *Peer) Typename() string { return TypenamePeer }

// AsObject implements Entity.
func (p *Peer) AsObject(opts AsObjectOptions) Object {
	if p == nil {
		return nil
	}
	target := Object{}
	p.writeTo(target, TypenamePeer, opts)
	target.SetString("dns", p.Host)
	target.SetInt("port", p.Port)
	target["useSsl"] = p.UseSSL
	target.SetString("path", p.Path)
	target.SetString("pubkey", p.Pubkey)
	target.SetString("label", p.Label)
	return target
}

// URL returns the base URL of the peer. Default ports are omitted.
func (p *Peer) URL() string {
	scheme := "http"
	if p.UseSSL {
		scheme = "https"
	}
	host := p.Host
	if p.Port != nil && !(p.UseSSL && *p.Port == 443) && !(!p.UseSSL && *p.Port == 80) {
		host = fmt.Sprintf("%s:%d", host, *p.Port)
	}
	path := strings.TrimSuffix(p.Path, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, path)
}

// Equals implements Equaler. Peers are the same node when they share the
// public key and the URL, whatever their ids.
func (p *Peer) Equals(other Entity) bool {
	o, ok := other.(*Peer)
	if !ok || p == nil || o == nil {
		return false
	}
	return p.Pubkey == o.Pubkey && p.URL() == o.URL()
}
