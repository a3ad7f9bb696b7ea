// Package bravesearch searches the web through the Brave Search API.
//
// [Client.Search] never fails: a missing query or credential, transport
// errors, non-2xx statuses and undecodable bodies all degrade to an empty
// result slice after a bounded retry. [NewTool] exposes the client to the
// orchestration loop as the "search_brave" tool.
package bravesearch
