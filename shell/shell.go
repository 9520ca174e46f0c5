package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hybridcrypt/hybridcrypt/crypto"

	"github.com/peterh/liner"
)

const Prompt = "hybridcrypt> "

// TextCipher is the codec surface the shell drives.
type TextCipher interface {
	Encrypt(ctx context.Context, plainText string) (string, error)
	Decrypt(ctx context.Context, cipherText string) (string, error)
}

// Shell is a single-goroutine REPL over a TextCipher.
type Shell struct {
	codec    TextCipher
	info     crypto.KeyInfo
	prompter Prompter
	out      io.Writer

	lastPlain  string
	lastOutput string
}

func New(codec TextCipher, info crypto.KeyInfo, prompter Prompter, out io.Writer) *Shell {
	return &Shell{
		codec:    codec,
		info:     info,
		prompter: prompter,
		out:      out,
	}
}

// Run reads commands until quit, end of input or Ctrl-C. It returns ctx.Err()
// when the context ends between prompts.
func (s *Shell) Run(ctx context.Context) error {
	s.printf("hybridcrypt shell (scheme %s). Type help for commands.\n", s.info.Scheme)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.prompter.Prompt(Prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				s.printf("\n")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		s.prompter.AppendHistory(line)

		if !s.execute(ctx, line) {
			return nil
		}
	}
}

// execute runs one command line and reports whether the loop should continue.
func (s *Shell) execute(ctx context.Context, line string) bool {
	command, arg := splitCommand(line)

	switch strings.ToLower(command) {
	case "encrypt":
		s.encrypt(ctx, arg)
	case "decrypt":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			arg = s.lastOutput
		}
		s.decrypt(ctx, arg)
	case "again":
		if s.lastPlain == "" {
			s.printf("nothing to encrypt yet\n")
			return true
		}
		s.encrypt(ctx, s.lastPlain)
	case "info":
		s.printf("scheme:      %s\n", s.info.Scheme)
		s.printf("fingerprint: %s\n", s.info.Fingerprint)
		s.printf("capacity:    %d bytes\n", s.info.MaxPlaintextBytes)
	case "help":
		s.printHelp()
	case "quit", "exit":
		return false
	default:
		s.printf("unknown command %q, type help for commands\n", command)
	}

	return true
}

// splitCommand splits at the first whitespace rune after the command word.
// Everything after that single separator is the argument, kept verbatim, so
// leading or trailing spaces in plaintext survive.
func splitCommand(line string) (command, arg string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)

	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	_, size := utf8.DecodeRuneInString(line[i:])

	return line[:i], line[i+size:]
}

func (s *Shell) encrypt(ctx context.Context, plainText string) {
	out, err := s.codec.Encrypt(ctx, plainText)
	if err != nil {
		s.printError(err)
		return
	}

	s.lastPlain = plainText
	s.lastOutput = out
	s.printf("%s\n", out)
}

func (s *Shell) decrypt(ctx context.Context, cipherText string) {
	out, err := s.codec.Decrypt(ctx, cipherText)
	if err != nil {
		s.printError(err)
		return
	}

	s.lastPlain = out
	s.printf("%s\n", out)
}

func (s *Shell) printError(err error) {
	s.printf("error (%s): %v\n", crypto.Kind(err), err)
}

func (s *Shell) printHelp() {
	s.printf(`commands:
  encrypt <text>   encrypt text (verbatim after one separator) and print the ciphertext
  decrypt [text]   decrypt text, or the last ciphertext when omitted
  again            encrypt the last plaintext again
  info             show the scheme, key fingerprint and capacity
  help             show this help
  quit | exit      leave the shell
`)
}

func (s *Shell) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
