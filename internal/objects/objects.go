// Package objects contains the wire objects shared by the api handlers and
// the middleware. To avoid circular dependencies, we put them here.
package objects
