// Package registry is the compiled-in catalog of applications easiarr can
// deploy and configure. Every other layer keys off it: compose generation
// reads images, ports and mounts; the provisioning engine reads dependency
// edges; artifact generators read categories and display names.
package registry
