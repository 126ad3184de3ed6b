package assemble

import (
	"bytes"
	"fmt"
	"text/template"
)

// renderTemplate expands a named text template with the package metadata.
func renderTemplate(name, text string, m Metadata) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

// launcherTemplate starts the container runtime against the repacked
// archive, passing through all process arguments.
const launcherTemplate = `#!/bin/bash
exec electron /usr/{{.LibDir}}/{{.Name}}/app.asar "$@"
`

// desktopTemplate declares the claude: URI-scheme handler and the window
// class. MimeType and Exec lines are an external contract consumed by
// desktop-environment URL handlers; do not reformat them.
const desktopTemplate = `[Desktop Entry]
Name=Claude
Comment=Claude Desktop
Exec={{.Name}} %u
Icon={{.Name}}
Type=Application
Terminal=false
Categories=Office;Utility;Network;
MimeType=x-scheme-handler/claude;
StartupWMClass=Claude
`

// rpmSpecTemplate is rendered per build with the staged install root path
// baked in; rpmbuild copies the pre-validated tree verbatim. The %post
// cache refreshes are best-effort.
const rpmSpecTemplate = `%define _build_id_links none
%global __os_install_post %{nil}

Name:           {{.Meta.Name}}
Version:        {{.Meta.Version}}
Release:        {{.Meta.Release}}
Summary:        Claude Desktop for Linux
License:        Proprietary
URL:            https://claude.ai
BuildArch:      {{.Meta.Arch}}
Requires:       electron
AutoReqProv:    no

%description
Claude Desktop repackaged from the vendor Windows installer, with the
native-integration module replaced by a Linux-safe stub.

%install
mkdir -p %{buildroot}
cp -a {{.InstallRoot}}/. %{buildroot}/

%files
/usr/bin/{{.Meta.Name}}
/usr/{{.Meta.LibDir}}/{{.Meta.Name}}
/usr/share/applications/{{.Meta.Name}}.desktop
/usr/share/icons/hicolor/*/apps/{{.Meta.Name}}.png

%post
gtk-update-icon-cache -f -t /usr/share/icons/hicolor &>/dev/null || :
update-desktop-database /usr/share/applications &>/dev/null || :

%changelog
* Mon Jan 06 2025 {{.Meta.Maintainer}} - {{.Meta.Version}}-{{.Meta.Release}}
- Repackaged from the upstream Windows installer
`

// pkgbuildTemplate follows the Arch convention: the recipe copies the
// pre-built tree and the operator runs makepkg manually.
const pkgbuildTemplate = `# Maintainer: {{.Meta.Maintainer}}
pkgname={{.Meta.Name}}
pkgver={{.Meta.Version}}
pkgrel={{.Meta.Release}}
pkgdesc="Claude Desktop for Linux"
arch=('{{.Meta.Arch}}')
url="https://claude.ai"
license=('custom')
depends=('electron')
options=(!strip)

package() {
  cp -a "$startdir/root/." "$pkgdir/"
}
`

// specData feeds the rpm spec and PKGBUILD templates, which need the staged
// root path in addition to the metadata.
type specData struct {
	Meta        Metadata
	InstallRoot string
}

func renderPackaging(name, text string, m Metadata, installRoot string) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, specData{Meta: m, InstallRoot: installRoot}); err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}
