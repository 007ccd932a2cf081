package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions carries tunables for anonymous FTP transfers.
type FTPOptions struct {
	Timeout time.Duration
}

// FTPFetcher downloads files over anonymous FTP. The Census Bureau
// mirrors its boundary archives on ftp2.census.gov, which serves as the
// fallback when the HTTPS host is unavailable.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher builds a fetcher, filling in a 30s dial timeout when unset.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// Download retrieves the file behind an ftp:// URL. Closing the returned
// reader also quits the control connection.
func (f *FTPFetcher) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	host, path, err := parseFTPURL(ftpURL)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("ftp: download", zap.String("host", host), zap.String("path", path))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", host)
	}

	resp, err := retrieveAnonymous(conn, path)
	if err != nil {
		_ = conn.Quit()
		return nil, err
	}
	return &ftpConnReader{resp: resp, conn: conn}, nil
}

// DownloadToFile streams the FTP URL into a local file and reports the
// number of bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, ftpURL string, path string) (int64, error) {
	rc, err := f.Download(ctx, ftpURL)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "ftp: create %s", path)
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, rc)
	if err != nil {
		return n, eris.Wrapf(err, "ftp: write %s", path)
	}
	return n, nil
}

// retrieveAnonymous logs in with the conventional anonymous credentials
// and starts a RETR transfer for path.
func retrieveAnonymous(conn *ftp.ServerConn, path string) (*ftp.Response, error) {
	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		return nil, eris.Wrap(err, "ftp: anonymous login")
	}
	resp, err := conn.Retr(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: retr %s", path)
	}
	return resp, nil
}

// parseFTPURL splits an ftp:// URL into a dialable host:port and a
// server path, defaulting the port to 21.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrapf(err, "ftp: parse url %s", rawURL)
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" {
		return "", "", eris.Errorf("ftp: url %q has no path", rawURL)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}
	return host, u.Path, nil
}

// ftpConnReader couples a transfer response to its control connection so
// one Close tears down both.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "ftp: close data stream")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "ftp: quit")
	}
	return nil
}
