/*
Package session keeps the live mounts a host serves.

The HTTP and MCP servers mount trees on behalf of clients and address them by
mount ID. The Manager owns those roots, serializes host operations per ID and
remounts every tree when the underlying instances change.
*/
package session
