// Package kvserver provides the StackKV line protocol server.
//
// Clients send one newline-terminated text command per frame and receive
// one JSON object per line:
//
//	BEGIN | START      -> {"status":"Ok","mesg":"Began new transactions"}
//	COMMIT             -> {"status":"Ok","mesg":"Transaction committed"}
//	ROLLBACK           -> {"status":"Ok","mesg":"Transaction roll backed"}
//	GET <key>          -> {"status":"Ok","result":"<value>"}
//	PUT <key> <value>  -> {"status":"Ok"}
//	DELETE <key>       -> {"status":"Ok"}
//	END                -> {"status":"OK","mesg":"Closing connection"}
//
// Failures are reported as {"status":"Error","mesg":"..."}.
//
// Files:
//
//   - codec.go: bounded frame reading and response encoding
//   - command.go: parsing, dispatch and compensating rollback
//   - server.go: listener, per-connection loop and shutdown
package kvserver
