/*
Package e2e drives the expsum and expsum-worker binaries end to end.

The suite builds both commands with gexec, points --worker-path at the built
worker and checks the text a user sees:

	expsum run -x 2 -n 5 -w 2 -p <worker>   Final Result : 7.0000
	expsum run -x 0 -n 3 -w 3 -p <worker>   Final Result : 1.0000
	expsum run -m poll ...                   poll mechanism is not supported yet.

The serve specs start the HTTP API on a free port with a temporary data
folder and follow a run from 202 Accepted to completed.

Run with:

	go test ./test/e2e/...
*/
package e2e
