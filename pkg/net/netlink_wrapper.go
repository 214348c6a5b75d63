package net

import (
	"github.com/vishvananda/netlink"
)

// NetlinkProvider is a wrapper interface over vishvananda/netlink lib
type NetlinkProvider interface {
	// LinkByName returns Link by netdev name
	LinkByName(name string) (netlink.Link, error)
	// LinkList lists all links in the current network namespace
	LinkList() ([]netlink.Link, error)
	// LinkAdd adds a new link
	LinkAdd(link netlink.Link) error
	// LinkSetUp sets link admin state up
	LinkSetUp(link netlink.Link) error
}

// NewNetlinkProviderImpl creates a new NetlinkProviderImpl
func NewNetlinkProviderImpl() *NetlinkProviderImpl {
	return &NetlinkProviderImpl{}
}

type NetlinkProviderImpl struct{}

// LinkByName implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

// LinkList implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

// LinkAdd implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkAdd(link netlink.Link) error {
	return netlink.LinkAdd(link)
}

// LinkSetUp implements NetlinkProvider interface
func (n NetlinkProviderImpl) LinkSetUp(link netlink.Link) error {
	return netlink.LinkSetUp(link)
}
