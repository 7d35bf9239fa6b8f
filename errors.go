/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrorKind identifies a recoverable game failure. Every kind is reported
// back to the originating caller; none of them crash the process.
type ErrorKind string

const (
	ErrRoomNotFound          ErrorKind = "room_not_found"
	ErrPlayerNotFound        ErrorKind = "player_not_found"
	ErrNameTaken             ErrorKind = "name_taken"
	ErrRoomFull              ErrorKind = "room_full"
	ErrGameInProgress        ErrorKind = "game_in_progress"
	ErrNotReady              ErrorKind = "not_ready"
	ErrInvalidStatement      ErrorKind = "invalid_statement"
	ErrDuplicateStatement    ErrorKind = "duplicate_statement"
	ErrStatementLimitReached ErrorKind = "statement_limit_reached"
	ErrGameNotActive         ErrorKind = "game_not_active"
	ErrVotingClosed          ErrorKind = "voting_closed"
	ErrSelfVote              ErrorKind = "self_vote"
	ErrAlreadyVoted          ErrorKind = "already_voted"
	ErrNotHost               ErrorKind = "not_host"
	ErrNoRoundsRemaining     ErrorKind = "no_rounds_remaining"
)

// GameError pairs an ErrorKind with a human-readable message.
type GameError struct {
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func gameErr(kind ErrorKind, format string, args ...any) *GameError {
	return &GameError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// errKind extracts the ErrorKind from an error chain, or "" for internal faults.
func errKind(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
