package session

import (
	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	"github.com/AlibekovAA/no-tion/internal/notes/protocol"
)

func (s *Session) handleConnect(req protocol.Request) error {
	if s.state == StateAuthenticated {
		return commonerrors.ErrAlreadyAuthenticated
	}
	if req.ArgCount() != 1 {
		return commonerrors.ErrWrongArgumentCount
	}

	user, err := s.registry.ConnectOrCreate(req.Arg(0))
	if err != nil {
		return err
	}

	s.user = user
	s.state = StateAuthenticated
	s.fields("connect").Info("user connected")

	return s.writer.OK()
}

func (s *Session) handleCreateNote(req protocol.Request) error {
	if req.ArgCount() < 1 {
		return commonerrors.ErrWrongArgumentCount
	}
	if err := s.user.Notes.Create(req.Arg(0)); err != nil {
		return err
	}
	return s.writer.OK()
}

func (s *Session) handleDeleteNote(req protocol.Request) error {
	if req.ArgCount() < 1 {
		return commonerrors.ErrWrongArgumentCount
	}
	if !s.user.Notes.DeleteByTitle(req.Arg(0)) {
		return commonerrors.ErrNoteNotFound
	}
	return s.writer.OK()
}

func (s *Session) handleListNotes(_ protocol.Request) error {
	return s.writer.List(s.user.Notes.List())
}

func (s *Session) handleGetNote(req protocol.Request) error {
	if req.ArgCount() < 1 {
		return commonerrors.ErrWrongArgumentCount
	}
	index, err := protocol.ParseIndex(req.Arg(0))
	if err != nil {
		return err
	}

	note, err := s.user.Notes.Get(index)
	if err != nil {
		return err
	}
	return s.writer.Note(note.Content)
}

// handleUpdateContent stores the scrambled content token. Content with spaces
// must be quoted; "UPDATE_CONTENT 1 a b" stores "a".
func (s *Session) handleUpdateContent(req protocol.Request) error {
	if req.ArgCount() < 2 {
		return commonerrors.ErrWrongArgumentCount
	}
	index, err := protocol.ParseIndex(req.Arg(0))
	if err != nil {
		return err
	}

	content := s.scrambler.Scramble(req.Arg(1))
	if err := s.user.Notes.UpdateContent(index, content); err != nil {
		return err
	}
	return s.writer.OK()
}

func (s *Session) handleUpdateTitle(req protocol.Request) error {
	if req.ArgCount() < 2 {
		return commonerrors.ErrWrongArgumentCount
	}
	index, err := protocol.ParseIndex(req.Arg(0))
	if err != nil {
		return err
	}

	if err := s.user.Notes.UpdateTitle(index, req.Arg(1)); err != nil {
		return err
	}
	return s.writer.OK()
}
