// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	AppFileParseErrorId
	NoApplicationsId
	SelectorNotFoundId
	AmbiguousSelectorId
	UnknownCapabilityId
	InvalidMountSpecId
	UnsupportedOnTargetId
	ContainerEngineNotFoundId
	BuildRequiredButMissingId
	BuildFailedId
	ExecutionFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath (a file, or a standard style name such as "dark" or "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(slices.Clone(i.docLinks), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the podenv settings file.

## Where podenv looks:
1. The file given by ` + "`--config`" + `
2. The file named by ` + "`$PODENV_CONFIG`" + `
3. ` + "`$XDG_CONFIG_HOME/podenv/config.cue`" + ` (usually ~/.config/podenv/config.cue)

## Things you can try:
- Print the effective configuration:
~~~
$ podenv config
~~~
- Check ` + "`PODENV_*`" + ` environment variables for invalid values

## Example configuration:
~~~cue
engine: "podman"
target: "podman"
shell: ["/bin/bash"]
apps: ["apps.cue"]
~~~`,
	}

	appFileParseErrorIssue = &Issue{
		id: AppFileParseErrorId,
		mdMsg: `
# Failed to parse an application file!

An application file contains syntax errors or invalid records.

## Common issues:
- Unknown field names (records are closed)
- ` + "`image`" + ` and ` + "`containerfile`" + ` both set
- Volumes without the ` + "`name|`" + ` prefix
- Capability names that do not exist (see ` + "`podenv capabilities`" + `)

## Example application:
~~~cue
apps: firefox: {
	image: "registry.fedoraproject.org/fedora:latest"
	command: ["firefox"]
	capabilities: {wayland: true, pulseaudio: true, network: true}
}
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	noApplicationsIssue = &Issue{
		id: NoApplicationsId,
		mdMsg: `
# No applications defined!

No application file was found or every file is empty.

## Things you can try:
- Create ` + "`~/.config/podenv/apps.cue`" + ` or ` + "`apps.toml`" + `
- List the files explicitly in config.cue:
~~~cue
apps: ["/path/to/apps.cue"]
~~~
- Print the JSON Schema of application files:
~~~
$ podenv schema
~~~`,
	}

	selectorNotFoundIssue = &Issue{
		id: SelectorNotFoundId,
		mdMsg: `
# Application not found!

No application name starts with the selector you gave.

## Things you can try:
- List the available applications:
~~~
$ podenv --list
~~~
- Check for typos in the name`,
	}

	ambiguousSelectorIssue = &Issue{
		id: AmbiguousSelectorId,
		mdMsg: `
# Ambiguous application selector!

More than one application name starts with the selector you gave.

## Things you can try:
- Type more of the name, or the full name
- List the candidates:
~~~
$ podenv --list
~~~`,
	}

	unknownCapabilityIssue = &Issue{
		id: UnknownCapabilityId,
		mdMsg: `
# Unknown capability!

A capability toggle names a capability podenv does not know.

## Things you can try:
- List every capability:
~~~
$ podenv capabilities
~~~
- Use ` + "`--<name>`" + ` to enable and ` + "`--no-<name>`" + ` to disable`,
	}

	invalidMountSpecIssue = &Issue{
		id: InvalidMountSpecId,
		mdMsg: `
# Invalid volume specification!

Volumes are written ` + "`NAME|HOSTPATH[:CONTAINERPATH[:ro]]`" + `.

## Examples:
- ` + "`src|~/src`" + ` bind-mounts ~/src at the same path
- ` + "`src|~/src:/work`" + ` bind-mounts ~/src at /work
- ` + "`cache|`" + ` uses a named volume at /volumes/cache
- ` + "`cache|:/var/cache:ro`" + ` uses a named volume, read-only`,
	}

	unsupportedOnTargetIssue = &Issue{
		id: UnsupportedOnTargetId,
		mdMsg: `
# Not supported on this target!

The application asks for something the selected runtime target cannot
provide. podenv refuses to run a less isolated or less capable container
than requested.

## Things you can try:
- Disable the capability for this run, e.g. ` + "`--no-x11`" + `
- Run on the local engine instead:
~~~
$ podenv --target podman <app>
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

podenv runs applications with Podman, which is not installed or not working.

## Things you can try:
- Install Podman:
  - Fedora: ` + "`sudo dnf install podman`" + `
  - Debian/Ubuntu: ` + "`sudo apt install podman`" + `
- Point podenv at another binary in config.cue:
~~~cue
engine: "/usr/local/bin/podman"
~~~`,
		extLinks: []HttpLink{"https://podman.io/docs/installation"},
	}

	buildRequiredButMissingIssue = &Issue{
		id: BuildRequiredButMissingId,
		mdMsg: `
# No image to run!

The application declares neither an ` + "`image`" + ` nor a ` + "`containerfile`" + `.

## Things you can try:
- Add an image to the application record
- Or pass one for this run:
~~~
$ podenv --image registry.fedoraproject.org/fedora:latest <app>
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Image build failed!

The image of the application could not be built or pulled.

## Things you can try:
- Show the Containerfile and the command line:
~~~
$ podenv --show <app>
~~~
- Rebuild without cache:
~~~
$ podenv --rebuild <app>
~~~
- Run with ` + "`--verbose`" + ` for the engine output`,
	}

	executionFailedIssue = &Issue{
		id: ExecutionFailedId,
		mdMsg: `
# Could not start the runtime!

The runtime program could not be executed.

## Things you can try:
- Check that ` + "`podman`" + ` (or ` + "`kubectl`" + ` for the kubernetes target) is in PATH
- Configure the binary path in config.cue (` + "`engine`" + ` / ` + "`kubectl`" + `)`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- A bind-mounted host path is not readable
- Rootless Podman is missing subordinate id ranges

## Things you can try:
- Check file/directory permissions
- Verify /etc/subuid and /etc/subgid contain your user
- Run ` + "`podman system migrate`" + ` after changing them`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		appFileParseErrorIssue.Id():       appFileParseErrorIssue,
		noApplicationsIssue.Id():          noApplicationsIssue,
		selectorNotFoundIssue.Id():        selectorNotFoundIssue,
		ambiguousSelectorIssue.Id():       ambiguousSelectorIssue,
		unknownCapabilityIssue.Id():       unknownCapabilityIssue,
		invalidMountSpecIssue.Id():        invalidMountSpecIssue,
		unsupportedOnTargetIssue.Id():     unsupportedOnTargetIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		buildRequiredButMissingIssue.Id(): buildRequiredButMissingIssue,
		buildFailedIssue.Id():             buildFailedIssue,
		executionFailedIssue.Id():         executionFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
