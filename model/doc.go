// Package model defines the provider-agnostic abstraction for backing
// agents with language models.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Let providers (Anthropic, OpenAI) implement one small interface
//   - Bridge any Model into a core.Handler so model-backed agents register
//     with the protocol exactly like hand-written ones
//   - Facilitate lightweight mocking for tests (MockModel)
package model
