package coliru

import "strings"

const fence = "```"

const cppCommand = "g++ -std=c++1z -O2 -Wall -Wextra -pedantic -pthread main.cpp -lstdc++fs && ./a.out"

// commands maps a code block language to the shell command run by the service.
// The service always stores the source as main.cpp.
var commands = map[string]string{
	"cpp":     cppCommand,
	"cc":      cppCommand,
	"h":       cppCommand,
	"c++":     cppCommand,
	"h++":     cppCommand,
	"hpp":     cppCommand,
	"c":       "mv main.cpp main.c && gcc -std=c11 -O2 -Wall -Wextra -pedantic main.c && ./a.out",
	"py":      "python3 main.cpp",
	"python":  "python3 main.cpp",
	"haskell": "runhaskell main.cpp",
}

// CodeBlock is source code ready to be sent to the service.
type CodeBlock struct {
	Language string
	Command  string
	Source   string
}

// CommandFor returns the shell command for the given language.
func CommandFor(language string) (string, error) {
	cmd, ok := commands[strings.ToLower(language)]
	if !ok {
		return "", &UnknownLanguageError{Language: language}
	}
	return cmd, nil
}

// ParseCodeBlock reads a markdown code block of the form
//
//	```language
//	code here
//	```
func ParseCodeBlock(argument string) (*CodeBlock, error) {
	block, code, ok := strings.Cut(argument, "\n")
	if !ok {
		return nil, ErrMissingCodeBlock
	}

	if !strings.HasPrefix(block, fence) && !strings.HasSuffix(code, fence) {
		return nil, ErrMissingCodeBlock
	}

	language := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(block, fence)))
	cmd, err := CommandFor(language)
	if err != nil {
		return nil, err
	}

	return &CodeBlock{
		Language: language,
		Command:  cmd,
		Source:   strings.ReplaceAll(strings.TrimRight(code, "`"), fence, ""),
	}, nil
}
