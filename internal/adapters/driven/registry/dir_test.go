package registry

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func fixtureCertBase64(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "idp"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	return base64.StdEncoding.EncodeToString(der)
}

func entityDescriptor(t *testing.T, entityID string) string {
	return fmt.Sprintf(`<md:EntityDescriptor xmlns:md="urn:oasis:names:tc:SAML:2.0:metadata" entityID=%q>
  <md:IDPSSODescriptor protocolSupportEnumeration="urn:oasis:names:tc:SAML:2.0:protocol">
    <md:KeyDescriptor use="signing">
      <ds:KeyInfo xmlns:ds="http://www.w3.org/2000/09/xmldsig#">
        <ds:X509Data><ds:X509Certificate>%s</ds:X509Certificate></ds:X509Data>
      </ds:KeyInfo>
    </md:KeyDescriptor>
    <md:SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="%s/sso"/>
  </md:IDPSSODescriptor>
</md:EntityDescriptor>`, entityID, fixtureCertBase64(t), entityID)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestDirectoryRegistryLoad(t *testing.T) {
	dir := t.TempDir()

	aggregate := `<md:EntitiesDescriptor xmlns:md="urn:oasis:names:tc:SAML:2.0:metadata">` +
		entityDescriptor(t, "https://idp.one") +
		entityDescriptor(t, "https://idp.two") +
		`</md:EntitiesDescriptor>`
	writeFile(t, dir, "aggregate.xml", aggregate)
	writeFile(t, dir, "three.xml", entityDescriptor(t, "https://idp.three"))
	writeFile(t, dir, "four.xml", entityDescriptor(t, "https://idp.four"))

	r := NewDirectoryRegistry(dir, WithLogger(zaptest.NewLogger(t)))

	all := r.All()
	if len(all) != 4 {
		t.Fatalf("All() = %d providers, want 4", len(all))
	}
	for _, want := range []string{"https://idp.one", "https://idp.two", "https://idp.three", "https://idp.four"} {
		if r.FindByEntityID(want) == nil {
			t.Errorf("FindByEntityID(%q) = nil", want)
		}
	}
	if got := r.FindByEntityID("https://idp.unknown"); got != nil {
		t.Errorf("FindByEntityID(unknown) = %v, want nil", got)
	}
	if len(r.FileErrors()) != 0 {
		t.Errorf("FileErrors() = %v, want none", r.FileErrors())
	}
}

func TestDirectoryRegistrySkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.xml", entityDescriptor(t, "https://idp.good"))
	writeFile(t, dir, "broken.xml", "<not-metadata")

	r := NewDirectoryRegistry(dir)

	if got := r.FindByEntityID("https://idp.good"); got == nil {
		t.Error("FindByEntityID(good) = nil, want provider despite broken sibling file")
	}
	if len(r.FileErrors()) != 1 {
		t.Errorf("FileErrors() = %v, want one entry", r.FileErrors())
	}
}

func TestDirectoryRegistryEmptyDir(t *testing.T) {
	r := NewDirectoryRegistry(t.TempDir())
	if got := r.All(); len(got) != 0 {
		t.Errorf("All() = %v, want empty", got)
	}
	if got := r.FindByEntityID("https://idp.any"); got != nil {
		t.Errorf("FindByEntityID = %v, want nil", got)
	}
}

func TestDirectoryRegistryDuplicateEntityIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.xml", entityDescriptor(t, "https://idp.dup"))
	writeFile(t, dir, "b.xml", entityDescriptor(t, "https://idp.dup"))

	r := NewDirectoryRegistry(dir)
	first := r.FindByEntityID("https://idp.dup")
	if first == nil {
		t.Fatal("FindByEntityID(dup) = nil")
	}
	// First match wins; repeated lookups return the same provider.
	if again := r.FindByEntityID("https://idp.dup"); again != first {
		t.Error("FindByEntityID(dup) did not return the first match")
	}
}
